package rest

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kodecrm/wacoex/core/config"
	"github.com/kodecrm/wacoex/domains/tenant"
)

// resolveTenantContext builds the explicit tenant context handed to core
// logic. Priority: tenant id in the request payload, then the X-Tenant-ID
// header, then the request host's subdomain.
func resolveTenantContext(c *fiber.Ctx, repo tenant.ITenantRepository, bodyTenantID int64) tenant.Context {
	if bodyTenantID > 0 {
		tc := tenant.Context{TenantID: bodyTenantID}
		if t, err := repo.GetByID(c.UserContext(), bodyTenantID); err == nil {
			tc.Subdomain = t.Subdomain
		}
		return tc
	}

	if header := strings.TrimSpace(c.Get("X-Tenant-ID")); header != "" {
		if id, err := strconv.ParseInt(header, 10, 64); err == nil && id > 0 {
			tc := tenant.Context{TenantID: id}
			if t, err := repo.GetByID(c.UserContext(), id); err == nil {
				tc.Subdomain = t.Subdomain
			}
			return tc
		}
	}

	if subdomain := subdomainFromHost(c.Hostname()); subdomain != "" {
		if t, err := repo.GetBySubdomain(c.UserContext(), subdomain); err == nil {
			return tenant.Context{TenantID: t.ID, Subdomain: t.Subdomain}
		}
	}

	return tenant.Context{}
}

// subdomainFromHost extracts the tenant subdomain from the request host,
// honoring the configured root domain when set.
func subdomainFromHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	if host == "" || host == "localhost" {
		return ""
	}

	if root := strings.ToLower(config.Global.App.RootDomain); root != "" {
		if host == root {
			return ""
		}
		if strings.HasSuffix(host, "."+root) {
			return strings.TrimSuffix(host, "."+root)
		}
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	return parts[0]
}
