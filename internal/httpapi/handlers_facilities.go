package httpapi

import (
	"context"
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

type facilityRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
}

func (req *facilityRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Location = strings.TrimSpace(req.Location)

	if req.Name == "" {
		return errors.New("name is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return errors.New("valid email is required")
	}
	if req.Location == "" {
		return errors.New("location is required")
	}
	return nil
}

func (a *API) tokenExpiry() time.Time {
	if !a.cfg.ElectionEndDate.IsZero() {
		return a.cfg.ElectionEndDate
	}
	return time.Now().AddDate(0, 3, 0)
}

func (a *API) votingLink(token string) string {
	return a.cfg.FrontendURL + "/vote/" + token
}

// createFacility inserts a facility together with its one-time token, then
// tries to mail the voting link. Mail failure is not fatal; the link comes
// back in the response for manual delivery.
func (a *API) createFacility(ctx context.Context, req facilityRequest) (models.Facility, string, bool, error) {
	token := ballot.NewSecret()
	facility := models.Facility{Name: req.Name, Email: req.Email, Location: req.Location}

	err := a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&facility).Error; err != nil {
			return err
		}
		return tx.Create(&models.VotingToken{
			FacilityID: facility.ID,
			Token:      token,
			ExpiresAt:  a.tokenExpiry(),
		}).Error
	})
	if err != nil {
		return models.Facility{}, "", false, err
	}

	link := a.votingLink(token)
	mailSent := true
	if err := a.mail.SendVotingToken(ctx, facility.Email, facility.Name, link); err != nil {
		log.Warn().Err(err).Str("facility", facility.Name).Msg("voting token mail failed")
		mailSent = false
	}
	if mailSent {
		if err := a.store.ORM.WithContext(ctx).Model(&facility).Update("token_sent", true).Error; err != nil {
			log.Warn().Err(err).Str("facility", facility.Name).Msg("token_sent flag not updated")
		}
	}

	return facility, link, mailSent, nil
}

func (a *API) handleCreateFacility(w http.ResponseWriter, r *http.Request) {
	var req facilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	facility, link, mailSent, err := a.createFacility(ctx, req)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(w, http.StatusConflict, errors.New("facility email already registered"))
			return
		}
		respondDomainError(w, err)
		return
	}

	a.audit.Record(ctx, audit.ActionFacilityCreated, "facility",
		facility.ID.String(), clientIP(r), map[string]any{"name": facility.Name})

	resp := map[string]any{"facility": facility, "emailSent": mailSent}
	if !mailSent {
		resp["votingLink"] = link
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (a *API) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var facilities []models.Facility
	if err := a.store.ORM.WithContext(ctx).Order("name ASC").Find(&facilities).Error; err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"facilities": facilities})
}

// handleDeleteFacility removes a facility and its token via the cascade.
func (a *API) handleDeleteFacility(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid facility id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	res := a.store.ORM.WithContext(ctx).Delete(&models.Facility{}, "id = ?", id)
	if res.Error != nil {
		respondDomainError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, errors.New("facility not found"))
		return
	}

	a.audit.Record(ctx, audit.ActionFacilityDeleted, "facility", id.String(), clientIP(r), nil)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (a *API) handleBulkFacilities(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Facilities []facilityRequest `json:"facilities"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Facilities) == 0 {
		respondError(w, http.StatusBadRequest, errors.New("facilities are required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	type itemResult struct {
		Email string `json:"email"`
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	items := make([]itemResult, 0, len(req.Facilities))
	created := 0
	for _, fr := range req.Facilities {
		if err := fr.validate(); err != nil {
			items = append(items, itemResult{Email: fr.Email, Error: err.Error()})
			continue
		}
		if _, _, _, err := a.createFacility(ctx, fr); err != nil {
			items = append(items, itemResult{Email: fr.Email, Error: err.Error()})
			continue
		}
		items = append(items, itemResult{Email: fr.Email, OK: true})
		created++
	}

	a.audit.Record(ctx, audit.ActionFacilityCreated, "facility", "", clientIP(r),
		map[string]any{"bulk": true, "created": created, "total": len(req.Facilities)})
	respondJSON(w, http.StatusOK, map[string]any{
		"created": created,
		"failed":  len(req.Facilities) - created,
		"items":   items,
	})
}

// handleResendToken mails the existing unused token again.
func (a *API) handleResendToken(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid facility id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	orm := a.store.ORM.WithContext(ctx)

	var facility models.Facility
	err = orm.First(&facility, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, errors.New("facility not found"))
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var token models.VotingToken
	if err := orm.First(&token, "facility_id = ?", facility.ID).Error; err != nil {
		respondDomainError(w, err)
		return
	}
	if token.Used {
		respondError(w, http.StatusConflict, errors.New("token already used"))
		return
	}

	link := a.votingLink(token.Token)
	if err := a.mail.SendVotingToken(ctx, facility.Email, facility.Name, link); err != nil {
		log.Warn().Err(err).Str("facility", facility.Name).Msg("voting token mail failed")
		respondJSON(w, http.StatusOK, map[string]any{"emailSent": false, "votingLink": link})
		return
	}

	a.audit.Record(ctx, audit.ActionTokenResent, "facility", facility.ID.String(), clientIP(r), nil)
	respondJSON(w, http.StatusOK, map[string]any{"emailSent": true})
}
