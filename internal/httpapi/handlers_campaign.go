package httpapi

import (
	"errors"
	"net/http"
	"net/mail"

	"github.com/rs/zerolog/log"

	"heimwahl/internal/audit"
	"heimwahl/internal/bus"
	"heimwahl/internal/campaign"
)

func (a *API) handleCampaignVotingStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email,omitempty"`
	}
	// An empty body means broadcast to all confirmed subscribers.
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
	}

	result, err := a.campaigns.SendVotingStart(r.Context(), req.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	a.finishCampaign(r, "voting_start", result)
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleCampaignReminders(w http.ResponseWriter, r *http.Request) {
	result, err := a.campaigns.SendReminders(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	a.finishCampaign(r, "voting_reminder", result)
	respondJSON(w, http.StatusOK, result)
}

// handleSendTestMail lets an admin verify mail delivery end to end with a
// single templated message.
func (a *API) handleSendTestMail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To      string `json:"to"`
		Subject string `json:"subject,omitempty"`
		Message string `json:"message,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := mail.ParseAddress(req.To); err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid recipient address is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.mail.SendTestMail(ctx, req.To, req.Subject, req.Message); err != nil {
		log.Error().Err(err).Str("to", req.To).Msg("test mail failed")
		respondError(w, http.StatusBadGateway, errors.New("test mail could not be delivered"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Test-Email wurde versendet",
	})
}

func (a *API) finishCampaign(r *http.Request, kind string, result campaign.Result) {
	a.audit.Record(r.Context(), audit.ActionCampaignDispatched, "campaign", kind, clientIP(r),
		map[string]any{"sent": result.Sent, "failed": result.Failed})
	if a.store.Bus != nil {
		_ = a.store.Bus.Publish(r.Context(), bus.SubjectCampaignFinished, bus.CampaignFinished{
			Kind:   kind,
			Sent:   result.Sent,
			Failed: result.Failed,
		})
	}
}
