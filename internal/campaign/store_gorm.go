package campaign

import (
	"context"

	"gorm.io/gorm"

	"heimwahl/internal/models"
)

// GormStore selects subscribers through the shared GORM handle.
type GormStore struct {
	orm *gorm.DB
}

func NewGormStore(orm *gorm.DB) *GormStore {
	return &GormStore{orm: orm}
}

func (s *GormStore) ConfirmedSubscribers(ctx context.Context, onlyEmail string) ([]models.NewsletterSubscription, error) {
	query := s.orm.WithContext(ctx).Where("confirmed = ?", true)
	if onlyEmail != "" {
		query = query.Where("email = ?", onlyEmail)
	}
	var subs []models.NewsletterSubscription
	err := query.Order("email ASC").Find(&subs).Error
	return subs, err
}

func (s *GormStore) UnvotedSubscribers(ctx context.Context) ([]models.NewsletterSubscription, error) {
	var subs []models.NewsletterSubscription
	err := s.orm.WithContext(ctx).
		Where("confirmed = ? AND has_voted = ?", true, false).
		Order("email ASC").
		Find(&subs).Error
	return subs, err
}

func (s *GormStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	model := func() *gorm.DB {
		return s.orm.WithContext(ctx).Model(&models.NewsletterSubscription{})
	}

	if err := model().Count(&stats.Total).Error; err != nil {
		return Stats{}, err
	}
	if err := model().Where("confirmed = ?", true).Count(&stats.Confirmed).Error; err != nil {
		return Stats{}, err
	}
	if err := model().Where("confirmed = ? AND has_voted = ?", true, true).Count(&stats.Voted).Error; err != nil {
		return Stats{}, err
	}
	stats.Pending = stats.Total - stats.Confirmed
	return stats, nil
}
