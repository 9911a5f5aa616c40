package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunPrintsCalculatedCart(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("OBS_ENABLE_TRACING", "false")
	t.Setenv("OBS_LOG_LEVEL", "error")

	dir := t.TempDir()
	cartPath := writeFile(t, dir, "cart.json", `{"token":"1c9d4c86-0a36-4f4b-9a41-7f3c5b2f8a10","name":"sCart","lineItems":[
		{"identifier":"SW1","type":"product","quantity":"2"},
		{"identifier":"SW1","type":"product","quantity":"1"},
		{"identifier":"GONE","type":"voucher","quantity":"1","payload":{"code":"GONE"}}]}`)
	contextPath := writeFile(t, dir, "context.json", `{"customerGroup":{"key":"EK","displayGross":true},"shippingLocation":{"country":{"id":2,"iso":"DE"}}}`)
	catalogPath := writeFile(t, dir, "catalog.json", `{"products":{"SW1":{"name":"Shirt","price":"10","taxRate":"19","stock":"10"}}}`)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-cart", cartPath, "-context", contextPath, "-catalog", catalogPath, "-metrics"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Equal(t, "1c9d4c86-0a36-4f4b-9a41-7f3c5b2f8a10", out["token"])
	require.Contains(t, stdout.String(), `"35.7"`)
	require.Contains(t, stdout.String(), "voucher-not-found")
	require.Contains(t, stderr.String(), "cart_calculations_total")
}

func TestRunRequiresInputs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Error(t, run(context.Background(), nil, &stdout, &stderr))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	dir := t.TempDir()
	cartPath := writeFile(t, dir, "cart.json", `{"name":"sCart","lineItems":[]}`)
	contextPath := writeFile(t, dir, "context.json", `{}`)
	err := run(context.Background(), []string{"-cart", cartPath, "-context", contextPath}, &stdout, &stderr)
	require.ErrorContains(t, err, "DATABASE_URL")
}
