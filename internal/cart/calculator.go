package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/obs"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// DefaultMaxRecalculations bounds the validator driven recalculation passes.
const DefaultMaxRecalculations = 2

const maxRecalculationsCeiling = 3

// Deps configures a Calculator. Collectors, processors and validators run in
// slice order.
type Deps struct {
	Collectors        []Collector
	Processors        []Processor
	Validators        []Validator
	Generator         Generator
	MaxRecalculations int
	Logger            *zerolog.Logger
	Validate          *validator.Validate
	Now               func() time.Time
}

// Calculator turns containers into calculated carts. It holds only immutable
// configuration and is safe for concurrent use with different containers.
type Calculator struct {
	collectors []Collector
	processors []Processor
	validators []Validator
	generator  Generator
	maxRecalc  int
	logger     zerolog.Logger
	validate   *validator.Validate
	now        func() time.Time
}

// NewCalculator builds a Calculator from deps.
func NewCalculator(deps Deps) *Calculator {
	c := &Calculator{
		collectors: append([]Collector(nil), deps.Collectors...),
		processors: append([]Processor(nil), deps.Processors...),
		validators: append([]Validator(nil), deps.Validators...),
		generator:  deps.Generator,
		maxRecalc:  clampRecalculations(deps.MaxRecalculations),
		logger:     zerolog.Nop(),
		validate:   deps.Validate,
		now:        deps.Now,
	}
	if deps.Logger != nil {
		c.logger = *deps.Logger
	}
	if c.validate == nil {
		c.validate = lineitem.NewValidator()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func clampRecalculations(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxRecalculations
	case n > maxRecalculationsCeiling:
		return maxRecalculationsCeiling
	default:
		return n
	}
}

// MaxRecalculations returns the effective recalculation bound.
func (c *Calculator) MaxRecalculations() int { return c.maxRecalc }

// Calculate collects data for container, runs the processors, assembles the
// cart and validates it. Validators that remediate the container trigger a
// new pass over the already collected data.
func (c *Calculator) Calculate(ctx context.Context, container *Container, sc shop.Context) (*CalculatedCart, error) {
	ctx, span := otel.Tracer("cart.Calculator").Start(ctx, "Calculator.Calculate")
	defer span.End()
	start := c.now()

	calculated, result, err := c.calculate(ctx, container, sc)
	obs.ObserveCalculation(result, obs.DurationMillis(c.now().Sub(start)))
	span.SetAttributes(attribute.String("cart.result", result))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("cart.line_items", calculated.LineItems().Len()))
	return calculated, nil
}

func (c *Calculator) calculate(ctx context.Context, container *Container, sc shop.Context) (*CalculatedCart, string, error) {
	if container == nil {
		return nil, "invalid", fmt.Errorf("%w: nil container", ErrInvalidContainer)
	}
	if err := container.Validate(c.validate); err != nil {
		return nil, "invalid", err
	}
	logger := obs.CartLogger(c.logger, container.Token)
	container.Errors.Clear()

	data, err := c.collect(ctx, container, sc)
	if err != nil {
		logger.Error().Err(err).Msg("cart_collect_failed")
		return nil, "error", err
	}

	result := "ok"
	for attempt := 0; ; attempt++ {
		calculated, err := c.pass(container, data, sc, logger)
		if err != nil {
			logger.Error().Err(err).Int("attempt", attempt).Msg("cart_calculation_failed")
			return nil, "error", err
		}
		valid, err := c.runValidators(calculated, sc, data, logger)
		if err != nil {
			logger.Error().Err(err).Int("attempt", attempt).Msg("cart_validation_failed")
			return nil, "error", err
		}
		if valid {
			calculated.captureErrors()
			logger.Debug().
				Int("attempt", attempt).
				Int("line_items", calculated.LineItems().Len()).
				Str("total", calculated.Price().TotalPrice.String()).
				Msg("cart_calculated")
			return calculated, result, nil
		}
		if attempt >= c.maxRecalc {
			logger.Warn().Int("attempt", attempt).Msg("cart_not_converged")
			return nil, "not_converged", fmt.Errorf("%w after %d recalculations", ErrNotConverged, c.maxRecalc)
		}
		result = "remediated"
		obs.ObserveRecalculation()
	}
}

func (c *Calculator) collect(ctx context.Context, container *Container, sc shop.Context) (*auxdata.Collection, error) {
	ctx, span := otel.Tracer("cart.Calculator").Start(ctx, "Calculator.collect")
	defer span.End()

	definitions := auxdata.New()
	for _, collector := range c.collectors {
		collector.Prepare(definitions, container, sc)
	}
	data := auxdata.New()
	var errs []error
	for _, collector := range c.collectors {
		if err := collector.Fetch(ctx, data, definitions, sc); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", collector, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("collect cart data: %w", err)
	}
	span.SetAttributes(attribute.Int("cart.data_entries", data.Len()))
	return data, nil
}

func (c *Calculator) pass(container *Container, data *auxdata.Collection, sc shop.Context, logger zerolog.Logger) (*CalculatedCart, error) {
	draft := lineitem.NewCalculatedCollection()
	for _, processor := range c.processors {
		if err := processor.Process(container, draft, data, sc); err != nil {
			return nil, fmt.Errorf("process %T: %w", processor, err)
		}
		logger.Debug().Str("processor", fmt.Sprintf("%T", processor)).Int("draft_items", draft.Len()).Msg("cart_processed")
	}
	return c.generator.Create(container, draft, sc)
}

func (c *Calculator) runValidators(calculated *CalculatedCart, sc shop.Context, data *auxdata.Collection, logger zerolog.Logger) (bool, error) {
	valid := true
	for _, v := range c.validators {
		ok, err := v.Validate(calculated, sc, data)
		if err != nil {
			return false, fmt.Errorf("validate %T: %w", v, err)
		}
		if !ok {
			name := fmt.Sprintf("%T", v)
			obs.ObserveRemediation(name)
			logger.Info().Str("validator", name).Msg("cart_remediated")
			valid = false
		}
	}
	return valid, nil
}
