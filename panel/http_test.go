package panel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mordilloSan/slogger/logger"
)

func serve(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter_ListEntries(t *testing.T) {
	p := activePanel()
	p.Append(logger.LogLevel, []any{"hello"})
	p.Append(logger.ErrorLevel, []any{"bad", []int{1}})

	rec := serve(t, NewRouter(p, RouterOptions{}), "GET", "/entries")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var body struct {
		Active  bool    `json:"active"`
		Visible bool    `json:"visible"`
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Active || body.Visible || len(body.Entries) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Entries[1].Class != "error" || body.Entries[1].Detail == "" {
		t.Fatalf("second entry = %+v", body.Entries[1])
	}
}

func TestRouter_ToggleEntry(t *testing.T) {
	p := activePanel()
	p.Append(logger.LogLevel, []any{"plain"})
	p.Append(logger.LogLevel, []any{map[string]int{"a": 1}})
	r := NewRouter(p, RouterOptions{})

	rec := serve(t, r, "POST", "/entries/1/toggle")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	var body struct {
		Index    int  `json:"index"`
		Expanded bool `json:"expanded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Index != 1 || !body.Expanded {
		t.Fatalf("unexpected body %+v", body)
	}

	if rec := serve(t, r, "POST", "/entries/0/toggle"); rec.Code != http.StatusBadRequest {
		t.Fatalf("plain entry toggle status = %d", rec.Code)
	}
	if rec := serve(t, r, "POST", "/entries/9/toggle"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing entry toggle status = %d", rec.Code)
	}
	if rec := serve(t, r, "GET", "/entries/1/toggle"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET toggle status = %d", rec.Code)
	}
}

func TestRouter_Clear(t *testing.T) {
	p := activePanel()
	p.Append(logger.LogLevel, []any{"x"})

	rec := serve(t, NewRouter(p, RouterOptions{}), "POST", "/clear")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if p.Len() != 0 {
		t.Fatalf("clear left %d entries", p.Len())
	}
}

func TestRouter_Export(t *testing.T) {
	p := activePanel()
	p.Append(logger.LogLevel, []any{"one"})
	p.Append(logger.LogLevel, []any{"two"})

	rec := serve(t, NewRouter(p, RouterOptions{}), "GET", "/export")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	want := `attachment; filename="slog-export-2024-03-01T12:30:45.000Z.txt"`
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Fatalf("content disposition = %q", cd)
	}
	if rec.Body.String() != "one\n\ntwo\n\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRouter_ExportInactive(t *testing.T) {
	rec := serve(t, NewRouter(New(), RouterOptions{}), "GET", "/export")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	l := logger.New(logger.Config{Sink: logger.NewMemorySink(), Registerer: reg})
	p := New()
	l.ActivateUI(p)
	l.Log("counted")

	r := NewRouter(p, RouterOptions{Gatherer: reg, Logger: l})
	rec := serve(t, r, "GET", "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `slogger_records_total{level="log"} 1`) {
		t.Fatalf("metrics output missing record counter:\n%s", rec.Body.String())
	}

	if rec := serve(t, NewRouter(p, RouterOptions{}), "GET", "/metrics"); rec.Code != http.StatusNotFound {
		t.Fatalf("metrics without a gatherer should 404, got %d", rec.Code)
	}
}
