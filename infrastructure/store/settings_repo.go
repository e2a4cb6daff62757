package store

import (
	"context"
	"errors"

	"github.com/kodecrm/wacoex/domains/settings"
	"github.com/spf13/cast"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	db *gorm.DB
}

var _ settings.ISettingsRepository = (*SettingsRepository)(nil)

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, tenantID int64, key string) (string, error) {
	var row settings.TenantSetting
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND key = ?", tenantID, key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

func (r *SettingsRepository) GetBool(ctx context.Context, tenantID int64, key string) bool {
	v, err := r.Get(ctx, tenantID, key)
	if err != nil {
		return false
	}
	return cast.ToBool(v)
}

func (r *SettingsRepository) Save(ctx context.Context, tenantID int64, key, value string) error {
	row := settings.TenantSetting{TenantID: tenantID, Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

func (r *SettingsRepository) SaveAll(ctx context.Context, tenantID int64, values map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &SettingsRepository{db: tx}
		for k, v := range values {
			if err := repo.Save(ctx, tenantID, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SettingsRepository) FindTenantsByValue(ctx context.Context, key, value string) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&settings.TenantSetting{}).
		Where("key = ? AND value = ?", key, value).
		Pluck("tenant_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
