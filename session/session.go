// Package session defines the administrative session capability the
// deployer and discoverer drive.
//
// A Session has exactly one current location. Create, Delete, GetAttribute
// and SetAttribute address absolute paths, and implementations may require
// those paths to be the current location; callers always Navigate first.
// Every failure is returned as a *modelerrors.SessionError.
//
// Two implementations ship with the module: memsession, an in-memory tree
// that records every call, and sqlstore, an offline configuration store
// persisted in SQLite.
package session

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/erraggy/modeltools/modelerrors"
)

// Session is the stateful administrative capability.
// A Session has a single owner and is not safe for concurrent use.
type Session interface {
	// Navigate makes path the current location.
	Navigate(ctx context.Context, path string) error
	// Current returns the current location.
	Current() string

	// Create creates instance name of adminType under parentPath.
	Create(ctx context.Context, name, adminType, parentPath string) error
	// Delete removes instance name under parentPath and everything below it.
	Delete(ctx context.Context, name, parentPath string) error
	// ListInstances returns the instance names under path, in creation order.
	ListInstances(ctx context.Context, path string) ([]string, error)
	// AdminType returns the type an instance was created with.
	AdminType(ctx context.Context, path string) (string, error)

	// GetAttribute returns an attribute value, or nil when it is unset.
	GetAttribute(ctx context.Context, path, name string) (any, error)
	// SetAttribute sets an attribute. A nil value unsets it.
	SetAttribute(ctx context.Context, path, name string, value any) error

	// BeginEdit opens an edit (online) or transaction (store).
	BeginEdit(ctx context.Context) error
	// Commit applies the open edit.
	Commit(ctx context.Context) error
	// Discard abandons the open edit.
	Discard(ctx context.Context) error
	// Close releases the session.
	Close(ctx context.Context) error
}

// Editor is implemented by sessions that can report an open edit.
type Editor interface {
	Editing() bool
}

// Op names a session operation.
type Op string

// Session operations.
const (
	OpNavigate  Op = "navigate"
	OpCreate    Op = "create"
	OpDelete    Op = "delete"
	OpList      Op = "list"
	OpAdminType Op = "admin_type"
	OpGet       Op = "get"
	OpSet       Op = "set"
	OpBeginEdit Op = "begin_edit"
	OpCommit    Op = "commit"
	OpDiscard   Op = "discard"
	OpClose     Op = "close"
)

// Call records one session operation.
type Call struct {
	Op   Op
	Path string
	Name string
	Type string
	// Value is the value passed to a set operation.
	Value any
}

// String returns a compact rendering, e.g. "set /Server/ms1 ListenPort=7001".
func (c Call) String() string {
	switch c.Op {
	case OpCreate:
		return fmt.Sprintf("create %s %s (%s)", c.Path, c.Name, c.Type)
	case OpSet:
		return fmt.Sprintf("set %s %s=%v", c.Path, c.Name, c.Value)
	case OpGet, OpDelete:
		return fmt.Sprintf("%s %s %s", c.Op, c.Path, c.Name)
	case OpBeginEdit, OpCommit, OpDiscard, OpClose:
		return string(c.Op)
	default:
		return fmt.Sprintf("%s %s", c.Op, c.Path)
	}
}

// Join returns the path of instance name under parent.
func Join(parent, name string) string {
	return path.Join("/", parent, name)
}

// Clean normalizes an absolute session path.
func Clean(p string) string {
	return path.Clean("/" + strings.TrimSpace(p))
}

// Failure builds a *modelerrors.SessionError for call.
func Failure(call Call, cause error) error {
	return &modelerrors.SessionError{Op: string(call.Op), Path: call.Path, Name: call.Name, Cause: cause}
}
