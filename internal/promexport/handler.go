package promexport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/common/expfmt"

	"github.com/stashmetrics/stash-exporter/internal/collect"
)

// Handler serves /metrics and /healthz from the shared metric store.
type Handler struct {
	store *collect.Store
	mux   *http.ServeMux
}

// New creates a Handler wired to the given store and registers all routes.
func New(store *collect.Store) http.Handler {
	h := &Handler{store: store, mux: http.NewServeMux()}
	h.mux.HandleFunc("/metrics", h.metrics)
	h.mux.HandleFunc("/healthz", h.healthz)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// metrics serves GET /metrics in the exposition format negotiated with the
// scraper. The snapshot is taken once, so the response is internally
// consistent even while the next cycle is publishing.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ms, st := h.store.Snapshot()
	fams := buildFamilies(ms, st)

	format := expfmt.Negotiate(r.Header)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range fams {
		if err := enc.Encode(mf); err != nil {
			// Client went away mid-response; nothing useful to send back.
			slog.Debug("metrics encode aborted", "family", mf.GetName(), "err", err)
			return
		}
	}
}

// healthResponse is the payload for GET /healthz.
type healthResponse struct {
	Up                        bool    `json:"up"`
	LastScrape                string  `json:"last_scrape,omitempty"` // RFC3339
	LastScrapeDurationSeconds float64 `json:"last_scrape_duration_seconds"`
	ScrapeCycles              uint64  `json:"scrape_cycles"`
	ScrapeFailures            uint64  `json:"scrape_failures"`
}

// healthz serves GET /healthz. It reports 200 regardless of upstream state —
// the exporter itself is healthy as long as it can answer; upstream liveness
// is in the body and in stash_up.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	_, st := h.store.Snapshot()
	resp := healthResponse{
		Up:                        st.Up,
		LastScrapeDurationSeconds: st.LastDuration.Seconds(),
		ScrapeCycles:              st.Cycles,
		ScrapeFailures:            st.Failures,
	}
	if !st.LastScrape.IsZero() {
		resp.LastScrape = st.LastScrape.Format(time.RFC3339)
	}
	jsonResp(w, http.StatusOK, resp)
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("json response encode failed", "err", err)
	}
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
