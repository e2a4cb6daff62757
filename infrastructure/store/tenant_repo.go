package store

import (
	"context"

	"github.com/kodecrm/wacoex/domains/tenant"
	pkgError "github.com/kodecrm/wacoex/pkg/error"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

var _ tenant.ITenantRepository = (*TenantRepository)(nil)

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	var row tenant.Tenant
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgError.NotFoundError("tenant not found")
		}
		return nil, err
	}
	return &row, nil
}

func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	var row tenant.Tenant
	err := r.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgError.NotFoundError("tenant not found")
		}
		return nil, err
	}
	return &row, nil
}
