package httpapi

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"heimwahl/internal/audit"
	"heimwahl/internal/ballot"
	"heimwahl/internal/models"
)

// handleSubscribe registers a group for election updates. Subscriptions use
// double opt-in: the address only becomes a voting credential once the
// confirmation link is clicked.
func (a *API) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email        string `json:"email"`
		GroupName    string `json:"group_name"`
		FacilityName string `json:"facility_name"`
		Region       string `json:"region"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid email is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	orm := a.store.ORM.WithContext(ctx)

	var existing models.NewsletterSubscription
	err := orm.First(&existing, "email = ?", req.Email).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub := models.NewsletterSubscription{
			Email:        req.Email,
			GroupName:    strings.TrimSpace(req.GroupName),
			FacilityName: strings.TrimSpace(req.FacilityName),
			Region:       strings.TrimSpace(req.Region),
			ConfirmToken: ballot.NewSecret(),
		}
		if err := orm.Create(&sub).Error; err != nil {
			respondDomainError(w, err)
			return
		}
		a.sendConfirmation(r, sub)
		respondJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "Bitte bestätigen Sie Ihre E-Mail-Adresse.",
		})
	case err != nil:
		respondDomainError(w, err)
	case existing.Confirmed:
		respondError(w, http.StatusConflict, errors.New("email already subscribed"))
	default:
		// Pending subscription: resend the confirmation mail.
		a.sendConfirmation(r, existing)
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Bestätigungs-E-Mail wurde erneut versendet.",
		})
	}
}

func (a *API) sendConfirmation(r *http.Request, sub models.NewsletterSubscription) {
	confirmLink := a.cfg.FrontendURL + "/newsletter/confirm?token=" + sub.ConfirmToken
	if err := a.mail.SendNewsletterConfirmation(r.Context(), sub.Email, sub.DisplayGroupName(), confirmLink); err != nil {
		log.Warn().Err(err).Str("email", sub.Email).Msg("confirmation mail failed")
	}
}

func (a *API) handleConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, errors.New("token is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	orm := a.store.ORM.WithContext(ctx)

	var sub models.NewsletterSubscription
	err := orm.First(&sub, "confirm_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, errors.New("confirmation token not found"))
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if !sub.Confirmed {
		now := time.Now()
		updates := map[string]any{"confirmed": true, "confirmed_at": &now}
		if err := orm.Model(&sub).Updates(updates).Error; err != nil {
			respondDomainError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"groupName": sub.DisplayGroupName(),
	})
}

func (a *API) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, errors.New("email is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	res := a.store.ORM.WithContext(ctx).Delete(&models.NewsletterSubscription{}, "email = ?", req.Email)
	if res.Error != nil {
		respondDomainError(w, res.Error)
		return
	}
	// Unsubscribing an unknown address succeeds; nothing to probe here.
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var subs []models.NewsletterSubscription
	if err := a.store.ORM.WithContext(ctx).Order("created_at DESC").Find(&subs).Error; err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

func (a *API) handleSubscriberStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	stats, err := a.campaigns.Stats(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (a *API) handleDeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid subscription id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	res := a.store.ORM.WithContext(ctx).Delete(&models.NewsletterSubscription{}, "id = ?", id)
	if res.Error != nil {
		respondDomainError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, errors.New("subscription not found"))
		return
	}

	a.audit.Record(ctx, audit.ActionSubscriberDeleted, "newsletter_subscription", id.String(), clientIP(r), nil)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
