package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
)

type SessionTokenPostgres struct {
	db *gorm.DB
}

func NewSessionTokenPostgres(db *gorm.DB) repositories.SessionTokenRepository {
	return &SessionTokenPostgres{db: db}
}

func (s *SessionTokenPostgres) Create(ctx context.Context, token *models.SessionToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

// GetByTokenForUpdate takes a row lock on the token so that concurrent
// attendance attempts serialize on it. Only meaningful inside a transaction.
func (s *SessionTokenPostgres) GetByTokenForUpdate(ctx context.Context, token string) (*models.SessionToken, error) {
	var record models.SessionToken
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token = ?", token).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *SessionTokenPostgres) MarkUsed(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&models.SessionToken{}).
		Where("id = ?", id).
		Update("used", true).Error
}

func (s *SessionTokenPostgres) DeleteExpiredByClass(ctx context.Context, classID string, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("class_id = ? AND (expires_at < ? OR used = ?)", classID, now, true).
		Delete(&models.SessionToken{})
	return result.RowsAffected, result.Error
}
