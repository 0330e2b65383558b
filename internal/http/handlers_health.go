package httpx

import (
	"net/http"
)

// ViewCounter reports how many views are mounted.
type ViewCounter interface {
	Len() int
}

type healthResponse struct {
	Status string `json:"status"`
	Views  int    `json:"views"`
}

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(views ViewCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			return
		}
		resp := healthResponse{Status: "ok"}
		if views != nil {
			resp.Views = views.Len()
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
