package audit

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"heimwahl/internal/models"
)

// Actions recorded in the audit log.
const (
	ActionVoteSubmitted      = "vote_submitted"
	ActionCandidateCreated   = "candidate_created"
	ActionCandidateUpdated   = "candidate_updated"
	ActionCandidateDeleted   = "candidate_deleted"
	ActionFacilityCreated    = "facility_created"
	ActionFacilityDeleted    = "facility_deleted"
	ActionTokenResent        = "token_resent"
	ActionSubscriberDeleted  = "subscriber_deleted"
	ActionSettingChanged     = "setting_changed"
	ActionAdminLogin         = "admin_login"
	ActionAdminLoginFailed   = "admin_login_failed"
	ActionPasswordChanged    = "password_changed"
	ActionCampaignDispatched = "campaign_dispatched"
)

// Recorder appends entries to the audit log. Failures are logged and
// swallowed so an audit hiccup never breaks the operation being audited.
type Recorder struct {
	orm *gorm.DB
}

func New(orm *gorm.DB) *Recorder {
	return &Recorder{orm: orm}
}

// Record appends one entry. targetID may be empty; metadata may be nil.
func (r *Recorder) Record(ctx context.Context, action, targetType, targetID, ip string, metadata map[string]any) {
	if r == nil || r.orm == nil {
		return
	}

	entry := models.AuditLogEntry{
		Action:     action,
		TargetType: targetType,
		IPAddress:  ip,
	}
	if targetID != "" {
		entry.TargetID = &targetID
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Warn().Err(err).Str("action", action).Msg("audit metadata not serializable")
		} else {
			entry.Metadata = raw
		}
	}

	if err := r.orm.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit log write failed")
	}
}

// List returns the newest entries, most recent first.
func (r *Recorder) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.AuditLogEntry
	err := r.orm.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
