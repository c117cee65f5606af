package menu

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler returns an HTTP handler that responds with the menu tree as JSON.
func (t *Tree) Handler() http.Handler {
	doc := t.Document()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("handling menu request",
			"method", r.Method,
			"url", r.URL.Path,
		)

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(doc); err != nil {
			slog.Error("failed to encode menu", "error", err)
			return
		}
	})
}
