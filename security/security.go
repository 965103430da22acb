// Package security defines the permission pre-check boundary callers consult
// before constructing or submitting query text.
//
// The query cache itself never calls into this package: permission checks
// happen before a query is built, caching happens after. The package exists
// so that both sides of that boundary agree on the contract — which
// operations exist, and what a denial carries.
package security

import (
	"fmt"
	"sync/atomic"
)

// Operation identifies the access kind a check failed for.
type Operation int

const (
	OpRead Operation = iota
	OpInsert
	OpUpdate
	OpDelete
)

// String returns the lowercase operation name.
func (op Operation) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// Error is a permission denial. Field is empty for object-level denials.
type Error struct {
	Op     Operation
	Object string
	Field  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("security: %s access denied on %s.%s", e.Op, e.Object, e.Field)
	}
	return fmt.Sprintf("security: %s access denied on %s", e.Op, e.Object)
}

// Checker verifies object- and field-level access before a query is built or
// a mutation is issued. Each method returns nil when access is granted and a
// *Error describing the first denial otherwise.
type Checker interface {
	CheckReadable(object string, fields []string) error
	CheckInsertable(object string, fields []string) error
	CheckUpdateable(object string, fields []string) error
	CheckDeletable(object string) error
}

// ObjectAccess describes the grants for one object type.
type ObjectAccess struct {
	Readable   bool
	Insertable bool
	Updateable bool
	Deletable  bool

	// Fields restricts field-level access. A nil map grants every field the
	// object-level permission; otherwise a field must be present and granted.
	Fields map[string]FieldAccess
}

// FieldAccess describes the grants for one field.
type FieldAccess struct {
	Readable   bool
	Insertable bool
	Updateable bool
}

// TableChecker is a declarative Checker backed by an in-memory grant table.
// Objects absent from the table deny everything.
//
// The bypass toggle disables all checks process-wide. It exists for batch
// and system contexts that run with elevated access; flip it with Bypass
// and restore with Enforce.
type TableChecker struct {
	grants map[string]ObjectAccess
	bypass atomic.Bool
}

// NewTableChecker creates a TableChecker over the given grant table.
func NewTableChecker(grants map[string]ObjectAccess) *TableChecker {
	return &TableChecker{grants: grants}
}

// Bypass disables all permission checks until Enforce is called.
func (c *TableChecker) Bypass() {
	c.bypass.Store(true)
}

// Enforce re-enables permission checks.
func (c *TableChecker) Enforce() {
	c.bypass.Store(false)
}

// CheckReadable implements Checker.
func (c *TableChecker) CheckReadable(object string, fields []string) error {
	return c.check(OpRead, object, fields)
}

// CheckInsertable implements Checker.
func (c *TableChecker) CheckInsertable(object string, fields []string) error {
	return c.check(OpInsert, object, fields)
}

// CheckUpdateable implements Checker.
func (c *TableChecker) CheckUpdateable(object string, fields []string) error {
	return c.check(OpUpdate, object, fields)
}

// CheckDeletable implements Checker. Deletion is object-level only.
func (c *TableChecker) CheckDeletable(object string) error {
	return c.check(OpDelete, object, nil)
}

func (c *TableChecker) check(op Operation, object string, fields []string) error {
	if c.bypass.Load() {
		return nil
	}

	access, ok := c.grants[object]
	if !ok || !objectGranted(op, access) {
		return &Error{Op: op, Object: object}
	}

	if access.Fields == nil {
		return nil
	}

	for _, field := range fields {
		fieldAccess, ok := access.Fields[field]
		if !ok || !fieldGranted(op, fieldAccess) {
			return &Error{Op: op, Object: object, Field: field}
		}
	}

	return nil
}

func objectGranted(op Operation, access ObjectAccess) bool {
	switch op {
	case OpRead:
		return access.Readable
	case OpInsert:
		return access.Insertable
	case OpUpdate:
		return access.Updateable
	case OpDelete:
		return access.Deletable
	default:
		return false
	}
}

func fieldGranted(op Operation, access FieldAccess) bool {
	switch op {
	case OpRead:
		return access.Readable
	case OpInsert:
		return access.Insertable
	case OpUpdate:
		return access.Updateable
	default:
		return false
	}
}
