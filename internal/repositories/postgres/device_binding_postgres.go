package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
)

type DeviceBindingPostgres struct {
	db *gorm.DB
}

func NewDeviceBindingPostgres(db *gorm.DB) repositories.DeviceBindingRepository {
	return &DeviceBindingPostgres{db: db}
}

func (d *DeviceBindingPostgres) Create(ctx context.Context, binding *models.DeviceBinding) error {
	return d.db.WithContext(ctx).Create(binding).Error
}

func (d *DeviceBindingPostgres) GetByUser(ctx context.Context, userID string) (*models.DeviceBinding, error) {
	var binding models.DeviceBinding
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&binding).Error
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

func (d *DeviceBindingPostgres) ExistsByUser(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.DeviceBinding{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (d *DeviceBindingPostgres) DeleteByUser(ctx context.Context, userID string) error {
	return d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.DeviceBinding{}).Error
}

func (d *DeviceBindingPostgres) List(ctx context.Context) ([]*models.DeviceBinding, error) {
	var bindings []*models.DeviceBinding
	err := d.db.WithContext(ctx).
		Preload("User").
		Order("created_at desc").
		Find(&bindings).Error
	if err != nil {
		return nil, err
	}
	return bindings, nil
}
