// Package repository defines error values shared across repositories.
// These sentinels let the service layer distinguish failure scenarios
// without inspecting driver-specific errors: ErrDuplicate covers unique
// index violations (MySQL error 1062) and is raised by every Create that
// can race past a pre-check, while the per-entity not-found errors are
// returned by lookups.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when an insert violates a unique index. The
// services remap it into their Conflict error so callers see one taxonomy
// whether the duplicate was caught by a pre-check or by the store itself.
var ErrDuplicate = errors.New("duplicate key")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
