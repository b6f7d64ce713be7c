package httpapi

import (
	"net/http"
	"strconv"
)

func (a *API) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	entries, err := a.audit.List(ctx, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
