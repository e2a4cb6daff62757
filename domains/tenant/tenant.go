package tenant

import (
	"context"
	"time"
)

// Context identifies the tenant a core operation acts on. It is always passed
// explicitly; core logic never resolves tenants from ambient request state.
type Context struct {
	TenantID  int64  `json:"tenant_id"`
	Subdomain string `json:"subdomain"`
}

func (c Context) Valid() bool {
	return c.TenantID > 0
}

// Tenant is a platform customer. All contact/chat/sync records are partitioned
// by TenantID.
type Tenant struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	Subdomain string    `json:"subdomain" gorm:"column:subdomain;uniqueIndex;not null"`
	Active    bool      `json:"active" gorm:"column:active;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Tenant) TableName() string { return "tenants" }

// ITenantRepository resolves tenants by id or subdomain and backs reverse
// resolution of webhook events to their owning tenant.
type ITenantRepository interface {
	GetByID(ctx context.Context, id int64) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
}
