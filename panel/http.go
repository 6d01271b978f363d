package panel

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mordilloSan/slogger/logger"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Gatherer, when set, is served at GET /metrics.
	Gatherer prometheus.Gatherer
	// Logger receives handler errors. Nil disables handler logging.
	Logger *logger.Logger
}

type handlers struct {
	panel *Panel
	log   *logger.Logger
}

// NewRouter exposes the panel over HTTP:
//
//	GET  /entries               entries as JSON
//	POST /entries/{index}/toggle expand or collapse an entry
//	POST /clear                 clear the entry list
//	GET  /export                download the export as text/plain
//	GET  /metrics               Prometheus metrics (when configured)
func NewRouter(p *Panel, opts RouterOptions) *mux.Router {
	h := &handlers{panel: p, log: opts.Logger}

	r := mux.NewRouter()
	r.HandleFunc("/entries", h.listEntries).Methods("GET")
	r.HandleFunc("/entries/{index:[0-9]+}/toggle", h.toggleEntry).Methods("POST")
	r.HandleFunc("/clear", h.clear).Methods("POST")
	r.HandleFunc("/export", h.export).Methods("GET")
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
	return r
}

type entriesResponse struct {
	Active  bool    `json:"active"`
	Visible bool    `json:"visible"`
	Entries []Entry `json:"entries"`
}

func (h *handlers) listEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, entriesResponse{
		Active:  h.panel.Active(),
		Visible: h.panel.Visible(),
		Entries: h.panel.Entries(),
	})
}

func (h *handlers) toggleEntry(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}

	expanded, err := h.panel.ToggleDetails(index)
	switch {
	case errors.Is(err, ErrNoEntry):
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrNoDetails):
		http.Error(w, "Entry has no details", http.StatusBadRequest)
		return
	case err != nil:
		h.logError("toggle entry", err)
		http.Error(w, "Failed to toggle entry", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"index": index, "expanded": expanded})
}

func (h *handlers) clear(w http.ResponseWriter, r *http.Request) {
	h.panel.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	file, err := h.panel.Export()
	if errors.Is(err, ErrInactive) {
		http.Error(w, "Log panel is not active", http.StatusConflict)
		return
	}
	if err != nil {
		h.logError("export", err)
		http.Error(w, "Failed to export logs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", file.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(file.Content))
}

func (h *handlers) logError(op string, err error) {
	if h.log != nil {
		h.log.Error("PANEL", op+" failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
