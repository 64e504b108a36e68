package signin

import (
	"io"
	"net/http"
)

// ServeHTTP adapts the handler to net/http. An unreadable or oversized body
// is treated as a missing CPF.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		body = nil
	}

	writeResponse(w, h.Handle(r.Context(), body))
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}
