package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"heimwahl/internal/audit"
	"heimwahl/internal/models"
)

type candidateRequest struct {
	Name             string `json:"name"`
	Age              *int   `json:"age"`
	FacilityName     string `json:"facility_name"`
	FacilityLocation string `json:"facility_location"`
	Biography        string `json:"biography"`
}

func (req *candidateRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.FacilityName = strings.TrimSpace(req.FacilityName)
	req.FacilityLocation = strings.TrimSpace(req.FacilityLocation)

	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > 130) {
		return errors.New("age out of range")
	}
	if len(req.Biography) > models.MaxBiographyLength {
		return errors.New("biography too long")
	}
	return nil
}

func (req candidateRequest) toModel() models.Candidate {
	return models.Candidate{
		Name:             req.Name,
		Age:              req.Age,
		FacilityName:     req.FacilityName,
		FacilityLocation: req.FacilityLocation,
		Biography:        req.Biography,
	}
}

func candidateIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid candidate id")
	}
	return id, nil
}

func (a *API) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var candidates []models.Candidate
	if err := a.store.ORM.WithContext(ctx).Order("name ASC").Find(&candidates).Error; err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

func (a *API) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := candidateIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var candidate models.Candidate
	err = a.store.ORM.WithContext(ctx).First(&candidate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, errors.New("candidate not found"))
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidate": candidate})
}

func (a *API) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req candidateRequest
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

	candidate := req.toModel()
	if err := a.store.ORM.WithContext(ctx).Create(&candidate).Error; err != nil {
		respondDomainError(w, err)
		return
	}

	a.audit.Record(ctx, audit.ActionCandidateCreated, "candidate",
		strconv.FormatInt(candidate.ID, 10), clientIP(r), map[string]any{"name": candidate.Name})
	respondJSON(w, http.StatusCreated, map[string]any{"candidate": candidate})
}

func (a *API) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := candidateIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req candidateRequest
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
	orm := a.store.ORM.WithContext(ctx)

	var candidate models.Candidate
	err = orm.First(&candidate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, errors.New("candidate not found"))
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	updates := map[string]any{
		"name":              req.Name,
		"age":               req.Age,
		"facility_name":     req.FacilityName,
		"facility_location": req.FacilityLocation,
		"biography":         req.Biography,
	}
	if err := orm.Model(&candidate).Updates(updates).Error; err != nil {
		respondDomainError(w, err)
		return
	}

	a.audit.Record(ctx, audit.ActionCandidateUpdated, "candidate",
		strconv.FormatInt(id, 10), clientIP(r), nil)
	respondJSON(w, http.StatusOK, map[string]any{"candidate": candidate})
}

// handleDeleteCandidate removes a candidate and, through the foreign key
// cascade, every vote cast for them.
func (a *API) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := candidateIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	res := a.store.ORM.WithContext(ctx).Delete(&models.Candidate{}, "id = ?", id)
	if res.Error != nil {
		respondDomainError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, errors.New("candidate not found"))
		return
	}

	a.audit.Record(ctx, audit.ActionCandidateDeleted, "candidate",
		strconv.FormatInt(id, 10), clientIP(r), nil)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// handleBulkCandidates imports candidates one by one; a bad row never aborts
// the rest of the batch.
func (a *API) handleBulkCandidates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Candidates []candidateRequest `json:"candidates"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Candidates) == 0 {
		respondError(w, http.StatusBadRequest, errors.New("candidates are required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	type itemResult struct {
		Name  string `json:"name"`
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
		ID    int64  `json:"id,omitempty"`
	}

	items := make([]itemResult, 0, len(req.Candidates))
	created := 0
	for _, cr := range req.Candidates {
		if err := cr.validate(); err != nil {
			items = append(items, itemResult{Name: cr.Name, Error: err.Error()})
			continue
		}
		candidate := cr.toModel()
		if err := a.store.ORM.WithContext(ctx).Create(&candidate).Error; err != nil {
			items = append(items, itemResult{Name: cr.Name, Error: err.Error()})
			continue
		}
		items = append(items, itemResult{Name: candidate.Name, OK: true, ID: candidate.ID})
		created++
	}

	a.audit.Record(ctx, audit.ActionCandidateCreated, "candidate", "", clientIP(r),
		map[string]any{"bulk": true, "created": created, "total": len(req.Candidates)})
	respondJSON(w, http.StatusOK, map[string]any{
		"created": created,
		"failed":  len(req.Candidates) - created,
		"items":   items,
	})
}
