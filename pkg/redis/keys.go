package redis

import (
	"strings"

	"github.com/google/uuid"
)

// Every key lives under kaupa: so the cache can share an instance.
const keyNamespace = "kaupa"

func DeliveryRuleKey(supplierID uuid.UUID) string {
	return key("delivery_rule", supplierID.String())
}

func SupplierProfileKey(supplierID uuid.UUID) string {
	return key("supplier_profile", supplierID.String())
}

// RateLimitKey namespaces a rate limit counter. Blank scopes are dropped.
func RateLimitKey(scope string) string {
	return key("rate_limit", scope)
}

func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}
