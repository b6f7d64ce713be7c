package httpapi

import (
	"net/http"

	"heimwahl/internal/audit"
	"heimwahl/internal/bus"
)

func (a *API) handleGetElectionSetting(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	closed, err := a.settings.ElectionClosed(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"closed": closed})
}

func (a *API) handlePutElectionSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Closed bool `json:"closed"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.settings.SetElectionClosed(ctx, req.Closed); err != nil {
		respondDomainError(w, err)
		return
	}

	a.audit.Record(ctx, audit.ActionSettingChanged, "setting", "election_closed", clientIP(r),
		map[string]any{"closed": req.Closed})
	if a.store.Bus != nil {
		_ = a.store.Bus.Publish(ctx, bus.SubjectElectionClosed, bus.ElectionClosed{Closed: req.Closed})
	}

	respondJSON(w, http.StatusOK, map[string]any{"closed": req.Closed})
}
