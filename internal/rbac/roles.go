// Package rbac maps user-facing role labels onto canonical roles and answers
// capability and factory-scope questions about them.
package rbac

import "strings"

// Canonical roles.
const (
	RoleWorker        = "worker"
	RoleManager       = "manager"
	RoleFactoryAdmin  = "factory_admin"
	RoleBuyer         = "buyer"
	RolePlatformAdmin = "platform_admin"
)

// Capability names a privilege granted to one or more roles.
type Capability string

const (
	CapCreateContent      Capability = "create_content"
	CapManageProducts     Capability = "manage_products"
	CapManageCompliance   Capability = "manage_compliance"
	CapApproveEvents      Capability = "approve_events"
	CapRecordEvents       Capability = "record_events"
	CapUploadRestricted   Capability = "upload_restricted"
	CapAdministerPlatform Capability = "administer_platform"
)

var canonicalRoles = []string{
	RoleWorker,
	RoleManager,
	RoleFactoryAdmin,
	RoleBuyer,
	RolePlatformAdmin,
}

// labelToRole is keyed by lower-cased label.
var labelToRole = map[string]string{
	"factory owner":              RoleFactoryAdmin,
	"compliance manager":         RoleManager,
	"buyer/brand representative": RoleBuyer,
	"consultant":                 RolePlatformAdmin,
	"other":                      RoleBuyer,
	RoleWorker:                   RoleWorker,
	RoleManager:                  RoleManager,
	RoleFactoryAdmin:             RoleFactoryAdmin,
	RoleBuyer:                    RoleBuyer,
	RolePlatformAdmin:            RolePlatformAdmin,
}

var displayNames = map[string]string{
	RoleFactoryAdmin:  "Factory Owner",
	RoleManager:       "Compliance Manager",
	RoleWorker:        "Worker",
	RoleBuyer:         "Buyer/Brand Representative",
	RolePlatformAdmin: "Consultant",
}

var capabilityRoles = map[Capability][]string{
	CapCreateContent:      {RoleFactoryAdmin, RoleManager, RolePlatformAdmin},
	CapManageProducts:     {RoleFactoryAdmin, RoleManager, RolePlatformAdmin},
	CapManageCompliance:   {RoleFactoryAdmin, RoleManager, RolePlatformAdmin},
	CapApproveEvents:      {RoleManager, RoleFactoryAdmin, RolePlatformAdmin},
	CapRecordEvents:       {RoleWorker, RoleManager, RoleFactoryAdmin, RolePlatformAdmin},
	CapUploadRestricted:   {RoleFactoryAdmin, RolePlatformAdmin},
	CapAdministerPlatform: {RolePlatformAdmin},
}

// Normalize maps a display label or canonical name to its canonical role.
// Unrecognised labels are returned trimmed but otherwise unchanged.
func Normalize(label string) string {
	trimmed := strings.TrimSpace(label)
	if role, ok := labelToRole[strings.ToLower(trimmed)]; ok {
		return role
	}
	return trimmed
}

// IsCanonical reports whether role is one of the five canonical roles.
func IsCanonical(role string) bool {
	for _, r := range canonicalRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Canonical returns the canonical roles in a stable order.
func Canonical() []string {
	out := make([]string, len(canonicalRoles))
	copy(out, canonicalRoles)
	return out
}

// RequiresFactory reports whether accounts with this role must belong to a factory.
func RequiresFactory(role string) bool {
	switch role {
	case RoleWorker, RoleManager, RoleFactoryAdmin:
		return true
	default:
		return false
	}
}

// DisplayName returns the UI label for a canonical role.
func DisplayName(role string) string {
	if name, ok := displayNames[role]; ok {
		return name
	}
	return role
}

// CapabilitySet is the set of capabilities a role holds.
type CapabilitySet map[Capability]struct{}

// Has reports whether the set contains capability.
func (s CapabilitySet) Has(capability Capability) bool {
	_, ok := s[capability]
	return ok
}

// Capabilities lists what role may do.
func Capabilities(role string) CapabilitySet {
	set := make(CapabilitySet)
	for capability, roles := range capabilityRoles {
		for _, r := range roles {
			if r == role {
				set[capability] = struct{}{}
				break
			}
		}
	}
	return set
}

// Has reports whether role holds capability.
func Has(role string, capability Capability) bool {
	for _, r := range capabilityRoles[capability] {
		if r == role {
			return true
		}
	}
	return false
}
