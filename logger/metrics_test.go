package logger

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountEmittedAndSuppressed(t *testing.T) {
	l, _ := newMemoryLogger(Config{})
	l.SetLevel(InfoLevel)

	l.Error("a")
	l.Info("b")
	l.Info("c")
	l.Log("dropped")

	if got := testutil.ToFloat64(l.metrics.emitted.WithLabelValues("info")); got != 2 {
		t.Fatalf("emitted info = %v, want 2", got)
	}
	if got := testutil.ToFloat64(l.metrics.emitted.WithLabelValues("error")); got != 1 {
		t.Fatalf("emitted error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(l.metrics.suppressed.WithLabelValues("log")); got != 1 {
		t.Fatalf("suppressed log = %v, want 1", got)
	}
}

func TestMetrics_Timers(t *testing.T) {
	l, _ := newMemoryLogger(Config{})
	l.TimeEnd("nope")
	l.TimeStart("ok")
	l.TimeEnd("ok")

	if got := testutil.ToFloat64(l.metrics.missing); got != 1 {
		t.Fatalf("missing timers = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(l.metrics.timers); got != 1 {
		t.Fatalf("timer histogram series = %d, want 1", got)
	}
}

func TestMetrics_RegistrationIsShared(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, _ := newMemoryLogger(Config{Registerer: reg})
	b, _ := newMemoryLogger(Config{Registerer: reg})

	a.Log("one")
	b.Log("two")

	if got := testutil.ToFloat64(a.metrics.emitted.WithLabelValues("log")); got != 2 {
		t.Fatalf("loggers on one registry should share counters, got %v", got)
	}
	if n, err := testutil.GatherAndCount(reg, "slogger_records_total"); err != nil || n != 1 {
		t.Fatalf("GatherAndCount = %d, %v", n, err)
	}
}
