// Package store provides the GORM-backed repositories behind the settings
// store, tenant resolution, sync tracking and chat materialization.
package store

import (
	"github.com/kodecrm/wacoex/domains/chat"
	"github.com/kodecrm/wacoex/domains/settings"
	"github.com/kodecrm/wacoex/domains/sync"
	"github.com/kodecrm/wacoex/domains/tenant"
	"gorm.io/gorm"
)

// Tables lists every model migrated by the migration command and the test
// helpers.
var Tables = []any{
	&tenant.Tenant{},
	&settings.TenantSetting{},
	&sync.Status{},
	&chat.Contact{},
	&chat.Source{},
	&chat.ContactStatus{},
	&chat.Chat{},
	&chat.ChatMessage{},
}

// Migrate creates or updates the schema for every known table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Tables...)
}
