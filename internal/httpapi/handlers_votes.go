package httpapi

import (
	"net/http"

	"heimwahl/internal/audit"
	"heimwahl/internal/ballot"
	"heimwahl/internal/bus"
	"heimwahl/internal/config"
	"heimwahl/internal/metrics"
)

type credentialRequest struct {
	Token string `json:"token,omitempty"`
	Email string `json:"email,omitempty"`
}

// credential builds the typed credential for the configured mode. Shape
// errors are left to the ballot service so every caller gets the same
// message.
func (a *API) credential(req credentialRequest) ballot.Credential {
	if a.cfg.CredentialMode == config.CredentialModeEmail {
		return ballot.EmailCredential{Email: req.Email}
	}
	return ballot.TokenCredential{Token: req.Token}
}

func (a *API) handleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	result, err := a.ballots.Verify(ctx, a.credential(req))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleSubmitBallot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		credentialRequest
		CandidateIDs []int64 `json:"candidateIds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	receipt, err := a.ballots.Submit(ctx, a.credential(req.credentialRequest), req.CandidateIDs, clientIP(r))
	if err != nil {
		if ierr, ok := err.(*ballot.IneligibleError); ok {
			metrics.BallotsRejected.WithLabelValues(ierr.Reason).Inc()
		}
		respondDomainError(w, err)
		return
	}

	metrics.BallotsAccepted.Inc()
	a.audit.Record(ctx, audit.ActionVoteSubmitted, "ballot", "", clientIP(r), map[string]any{
		"voted_count": receipt.VotedCount,
	})
	if a.store.Bus != nil {
		_ = a.store.Bus.Publish(ctx, bus.SubjectBallotRecorded, bus.BallotRecorded{
			SessionID:  receipt.SessionID,
			VotedCount: receipt.VotedCount,
		})
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"votedCount":   receipt.VotedCount,
		"groupName":    receipt.GroupName,
		"facilityName": receipt.FacilityName,
	})
}

func (a *API) handleElectionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	closed, err := a.settings.ElectionClosed(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"closed": closed})
}
