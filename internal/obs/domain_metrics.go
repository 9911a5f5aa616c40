package obs

import (
	"fmt"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartCalculationsTotal counts cart calculations by result.
	CartCalculationsTotal *prometheus.CounterVec
	// CartRecalculationsTotal counts recalculation passes requested by validators.
	CartRecalculationsTotal prometheus.Counter
	// CartRemediationsTotal counts validator remediations by validator.
	CartRemediationsTotal *prometheus.CounterVec
	// CartCalculationDuration records calculation latency in milliseconds.
	CartCalculationDuration *prometheus.HistogramVec
	// CatalogCacheTotal counts catalog cache lookups by source and result.
	CatalogCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers the cart and catalog collectors.
func MustRegisterDomainMetrics(namespace string, buckets []float64, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		if len(buckets) == 0 {
			buckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250}
		} else {
			sort.Float64s(buckets)
		}
		CartCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_calculations_total",
			Help:      "Count of cart calculations by result.",
		}, []string{"result"})
		CartRecalculationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_recalculations_total",
			Help:      "Number of recalculation passes requested by cart validators.",
		})
		CartRemediationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_validator_remediations_total",
			Help:      "Count of container remediations performed by cart validators.",
		}, []string{"validator"})
		CartCalculationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cart_calculation_duration_ms",
			Help:      "Cart calculation latency in milliseconds.",
			Buckets:   buckets,
		}, []string{"result"})
		CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_lookups_total",
			Help:      "Count of catalog cache lookups by source and result.",
		}, []string{"source", "result"})

		mustRegisterCollector(reg, CartCalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartCalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, CartRecalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartRecalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, CartRemediationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartRemediationsTotal = v
			}
		})
		mustRegisterCollector(reg, CartCalculationDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				CartCalculationDuration = v
			}
		})
		mustRegisterCollector(reg, CatalogCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogCacheTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}

// ObserveCalculation records the outcome of one cart calculation.
func ObserveCalculation(result string, millis float64) {
	if CartCalculationsTotal != nil {
		CartCalculationsTotal.WithLabelValues(result).Inc()
	}
	if CartCalculationDuration != nil {
		CartCalculationDuration.WithLabelValues(result).Observe(millis)
	}
}

// ObserveRemediation records a validator requesting a recalculation.
func ObserveRemediation(validator string) {
	if CartRemediationsTotal != nil {
		CartRemediationsTotal.WithLabelValues(validator).Inc()
	}
}

// ObserveRecalculation records one additional calculation pass.
func ObserveRecalculation() {
	if CartRecalculationsTotal != nil {
		CartRecalculationsTotal.Inc()
	}
}

// ObserveCacheLookup records a catalog cache hit or miss.
func ObserveCacheLookup(source, result string) {
	if CatalogCacheTotal != nil {
		CatalogCacheTotal.WithLabelValues(source, result).Inc()
	}
}
