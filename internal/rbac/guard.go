package rbac

import "errors"

var (
	// ErrForbidden is returned when the subject's role lacks a capability.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrOutOfScope is returned when a record belongs to another factory.
	ErrOutOfScope = errors.New("record outside caller's factory")
)

// Subject is the authenticated caller as seen by authorization checks.
type Subject struct {
	UserID    uint
	Role      string
	FactoryID *uint
}

// IsPlatformAdmin reports whether the subject bypasses factory scoping.
func (s Subject) IsPlatformAdmin() bool {
	return s.Role == RolePlatformAdmin
}

// HasFactory reports whether the subject is attached to a factory.
func (s Subject) HasFactory() bool {
	return s.FactoryID != nil && *s.FactoryID != 0
}

// Authorize checks the subject's role against a capability.
func Authorize(subject Subject, capability Capability) error {
	if !Has(subject.Role, capability) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeOwnership checks that a factory-scoped record is visible to the subject.
func AuthorizeOwnership(subject Subject, recordFactoryID uint) error {
	if subject.IsPlatformAdmin() {
		return nil
	}
	if !subject.HasFactory() || *subject.FactoryID != recordFactoryID {
		return ErrOutOfScope
	}
	return nil
}
