package tokenmeter

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew_MemoryOnly(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Record("gemini-2.0-flash", 100, 400, 500)
	c.Record("gemini-2.0-flash", 50, 150, 200)
	c.Record("gemini-2.5-pro", 10, 20, 30)

	report := c.Usage()
	if report.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", report.TotalRequests)
	}
	if report.DailyRequests != 3 {
		t.Errorf("DailyRequests = %d, want 3", report.DailyRequests)
	}
	if len(report.Models) != 2 {
		t.Fatalf("models = %d, want 2", len(report.Models))
	}
	if got := report.Models["gemini-2.0-flash"].TotalTokens; got != 700 {
		t.Errorf("flash total tokens = %d, want 700", got)
	}
	if got := report.Models["gemini-2.0-flash"].DailyInputTokens; got != 150 {
		t.Errorf("flash daily input tokens = %d, want 150", got)
	}
}

func TestClient_Model(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Record("gemini-2.0-flash", 10, 20, 30)

	usage, ok := c.Model("gemini-2.0-flash")
	if !ok {
		t.Fatal("expected model to be found")
	}
	if usage.MonthlyTotalTokens != 30 {
		t.Errorf("monthly total tokens = %d, want 30", usage.MonthlyTotalTokens)
	}

	if _, ok := c.Model("never-seen"); ok {
		t.Error("expected unknown model to be absent")
	}
}

func TestClient_MemoryOnly_FlushAndPingAreNoops(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.Flush(context.Background()); err != nil {
		t.Errorf("Flush: %v", err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestClient_Health_MemoryOnly(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	status := c.Health(context.Background())
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
	if len(status.Checks) != 0 {
		t.Errorf("expected no component checks, got %v", status.Checks)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	_, err := createStore(cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.driver != "valkey" {
		t.Errorf("driver = %q, want valkey", cfg.driver)
	}
	if cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addr = %q, want localhost:6379", cfg.addrs[0])
	}
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	cfg2 := &clientConfig{}
	WithRedis("localhost:6380", "pass").apply(cfg2)
	if cfg2.driver != "redis" {
		t.Errorf("driver = %q, want redis", cfg2.driver)
	}

	cfg3 := &clientConfig{}
	WithStandalone().apply(cfg3)
	if !cfg3.standalone {
		t.Error("expected standalone to be set")
	}
	WithKeyPrefix("custom:").apply(cfg3)
	if cfg3.keyPrefix != "custom:" {
		t.Errorf("keyPrefix = %q, want custom:", cfg3.keyPrefix)
	}

	cfg4 := &clientConfig{}
	logger := slog.Default()
	WithLogger(logger).apply(cfg4)
	if cfg4.logger != logger {
		t.Error("expected logger to be set")
	}

	cfg5 := &clientConfig{}
	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg5)
	if cfg5.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
}

func TestObserver_NilSafe(t *testing.T) {
	// nil observer should not panic.
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("record", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("record", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected metrics to be registered")
	}

	// Verify operations counter has both ok and error.
	found := false
	for _, f := range families {
		if f.GetName() == "tokenmeter_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d",
					len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("tokenmeter_sdk_operations_total not found")
	}
}

func TestObserver_WithLogger(t *testing.T) {
	logger := slog.Default()
	obs, err := newObserver(logger, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
}

func TestObserver_NoMetricsNoLogger(t *testing.T) {
	obs, err := newObserver(nil, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("noop", time.Now(), nil)
}
