package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"heimwahl/internal/models"
)

// Service reads and writes the settings table. The election-closed flag is
// fetched from the store on every call so an admin write is immediately
// visible to all server instances.
type Service struct {
	orm *gorm.DB
}

// New constructs a settings Service over the shared GORM handle.
func New(orm *gorm.DB) *Service {
	return &Service{orm: orm}
}

// ElectionClosed reports whether the global circuit-breaker is set. A missing
// row counts as open.
func (s *Service) ElectionClosed(ctx context.Context) (bool, error) {
	var setting models.Setting
	err := s.orm.WithContext(ctx).First(&setting, "setting_key = ?", models.SettingElectionClosed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return setting.Value == "true", nil
}

// SetElectionClosed flips the global circuit-breaker.
func (s *Service) SetElectionClosed(ctx context.Context, closed bool) error {
	value := "false"
	if closed {
		value = "true"
	}
	setting := models.Setting{Key: models.SettingElectionClosed, Value: value}
	return s.orm.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
		}).
		Create(&setting).Error
}
