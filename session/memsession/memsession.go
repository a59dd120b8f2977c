// Package memsession provides an in-memory Session that records every call.
//
// The tree is keyed by absolute path. Operations are strict about the
// current location: Create and Delete require the parent path to be
// current, and GetAttribute and SetAttribute require the instance path to
// be current. A path can be navigated to when it is the root, an existing
// instance, or a list path directly below one.
package memsession

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/session"
)

var (
	errClosed      = errors.New("session is closed")
	errNotCurrent  = errors.New("path is not the current location")
	errNoSuchPath  = errors.New("no such path")
	errExists      = errors.New("instance already exists")
	errNotEditing  = errors.New("no edit in progress")
	errEditing     = errors.New("edit already in progress")
	errEditNeeded  = errors.New("edit required")
	errInvalidName = errors.New("invalid instance name")
)

type object struct {
	adminType string
	attrs     map[string]any
}

func (o *object) clone() *object {
	c := &object{adminType: o.adminType, attrs: make(map[string]any, len(o.attrs))}
	for k, v := range o.attrs {
		c.attrs[k] = model.CloneValue(v)
	}
	return c
}

type state struct {
	objects map[string]*object
	order   []string
}

func (st *state) clone() *state {
	c := &state{objects: make(map[string]*object, len(st.objects)), order: slices.Clone(st.order)}
	for p, o := range st.objects {
		c.objects[p] = o.clone()
	}
	return c
}

// Session is an in-memory session.Session.
type Session struct {
	st           *state
	snapshot     *state
	current      string
	editing      bool
	editRequired bool
	closed       bool
	failure      func(session.Call) error
	calls        []session.Call
}

var _ session.Session = (*Session)(nil)
var _ session.Editor = (*Session)(nil)

// Option configures a Session.
type Option func(*Session)

// WithFailure injects a failure: fn is consulted before every operation and
// a non-nil result fails that operation.
func WithFailure(fn func(session.Call) error) Option {
	return func(s *Session) { s.failure = fn }
}

// WithEditRequired makes mutations fail unless an edit is open, the way an
// online server behaves.
func WithEditRequired() Option {
	return func(s *Session) { s.editRequired = true }
}

// WithInstance seeds an existing instance at instancePath.
func WithInstance(instancePath, adminType string, attrs map[string]any) Option {
	return func(s *Session) {
		p := session.Clean(instancePath)
		o := &object{adminType: adminType, attrs: map[string]any{}}
		for k, v := range attrs {
			o.attrs[k] = v
		}
		if _, ok := s.st.objects[p]; !ok {
			s.st.order = append(s.st.order, p)
		}
		s.st.objects[p] = o
	}
}

// New returns an empty session positioned at the root.
func New(opts ...Option) *Session {
	s := &Session{
		st:      &state{objects: map[string]*object{"/": {attrs: map[string]any{}}}},
		current: "/",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calls returns a copy of the recorded call log.
func (s *Session) Calls() []session.Call {
	return slices.Clone(s.calls)
}

// ResetCalls clears the call log.
func (s *Session) ResetCalls() {
	s.calls = nil
}

// Editing reports whether an edit is open.
func (s *Session) Editing() bool { return s.editing }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed }

// Exists reports whether an instance exists at p.
func (s *Session) Exists(p string) bool {
	_, ok := s.st.objects[session.Clean(p)]
	return ok
}

// Attributes returns a copy of the attributes set at p.
func (s *Session) Attributes(p string) map[string]any {
	o, ok := s.st.objects[session.Clean(p)]
	if !ok {
		return nil
	}
	return o.clone().attrs
}

// Paths returns every instance path in creation order.
func (s *Session) Paths() []string {
	return slices.Clone(s.st.order)
}

func (s *Session) begin(call session.Call) error {
	s.calls = append(s.calls, call)
	if s.closed {
		return session.Failure(call, errClosed)
	}
	if s.failure != nil {
		if err := s.failure(call); err != nil {
			return session.Failure(call, err)
		}
	}
	return nil
}

func (s *Session) mutable(call session.Call) error {
	if s.editRequired && !s.editing {
		return session.Failure(call, errEditNeeded)
	}
	return nil
}

func (s *Session) requireCurrent(call session.Call, p string) error {
	if p != s.current {
		return session.Failure(call, fmt.Errorf("%w: current is %s", errNotCurrent, s.current))
	}
	return nil
}

func (s *Session) navigable(p string) bool {
	if _, ok := s.st.objects[p]; ok {
		return true
	}
	_, ok := s.st.objects[path.Dir(p)]
	return ok
}

// Navigate makes p the current location.
func (s *Session) Navigate(_ context.Context, p string) error {
	p = session.Clean(p)
	call := session.Call{Op: session.OpNavigate, Path: p}
	if err := s.begin(call); err != nil {
		return err
	}
	if !s.navigable(p) {
		return session.Failure(call, errNoSuchPath)
	}
	s.current = p
	return nil
}

// Current returns the current location.
func (s *Session) Current() string { return s.current }

// Create creates name under parentPath, which must be current.
func (s *Session) Create(_ context.Context, name, adminType, parentPath string) error {
	parentPath = session.Clean(parentPath)
	call := session.Call{Op: session.OpCreate, Path: parentPath, Name: name, Type: adminType}
	if err := s.begin(call); err != nil {
		return err
	}
	if err := s.mutable(call); err != nil {
		return err
	}
	if err := s.requireCurrent(call, parentPath); err != nil {
		return err
	}
	if name == "" || strings.Contains(name, "/") {
		return session.Failure(call, errInvalidName)
	}
	p := session.Join(parentPath, name)
	if _, ok := s.st.objects[p]; ok {
		return session.Failure(call, errExists)
	}
	s.st.objects[p] = &object{adminType: adminType, attrs: map[string]any{}}
	s.st.order = append(s.st.order, p)
	return nil
}

// Delete removes name under parentPath, which must be current.
func (s *Session) Delete(_ context.Context, name, parentPath string) error {
	parentPath = session.Clean(parentPath)
	call := session.Call{Op: session.OpDelete, Path: parentPath, Name: name}
	if err := s.begin(call); err != nil {
		return err
	}
	if err := s.mutable(call); err != nil {
		return err
	}
	if err := s.requireCurrent(call, parentPath); err != nil {
		return err
	}
	p := session.Join(parentPath, name)
	if _, ok := s.st.objects[p]; !ok {
		return session.Failure(call, errNoSuchPath)
	}
	prefix := p + "/"
	s.st.order = slices.DeleteFunc(s.st.order, func(q string) bool {
		if q == p || strings.HasPrefix(q, prefix) {
			delete(s.st.objects, q)
			return true
		}
		return false
	})
	return nil
}

// ListInstances returns the instance names directly under p.
func (s *Session) ListInstances(_ context.Context, p string) ([]string, error) {
	p = session.Clean(p)
	if err := s.begin(session.Call{Op: session.OpList, Path: p}); err != nil {
		return nil, err
	}
	var names []string
	for _, q := range s.st.order {
		if q != "/" && path.Dir(q) == p {
			names = append(names, path.Base(q))
		}
	}
	return names, nil
}

// AdminType returns the type instance p was created with.
func (s *Session) AdminType(_ context.Context, p string) (string, error) {
	p = session.Clean(p)
	call := session.Call{Op: session.OpAdminType, Path: p}
	if err := s.begin(call); err != nil {
		return "", err
	}
	o, ok := s.st.objects[p]
	if !ok {
		return "", session.Failure(call, errNoSuchPath)
	}
	return o.adminType, nil
}

// GetAttribute returns attribute name of p, which must be current.
func (s *Session) GetAttribute(_ context.Context, p, name string) (any, error) {
	p = session.Clean(p)
	call := session.Call{Op: session.OpGet, Path: p, Name: name}
	if err := s.begin(call); err != nil {
		return nil, err
	}
	if err := s.requireCurrent(call, p); err != nil {
		return nil, err
	}
	o, ok := s.st.objects[p]
	if !ok {
		return nil, session.Failure(call, errNoSuchPath)
	}
	return model.CloneValue(o.attrs[name]), nil
}

// SetAttribute sets attribute name of p, which must be current.
func (s *Session) SetAttribute(_ context.Context, p, name string, value any) error {
	p = session.Clean(p)
	call := session.Call{Op: session.OpSet, Path: p, Name: name, Value: value}
	if err := s.begin(call); err != nil {
		return err
	}
	if err := s.mutable(call); err != nil {
		return err
	}
	if err := s.requireCurrent(call, p); err != nil {
		return err
	}
	o, ok := s.st.objects[p]
	if !ok {
		return session.Failure(call, errNoSuchPath)
	}
	if value == nil {
		delete(o.attrs, name)
		return nil
	}
	o.attrs[name] = model.CloneValue(value)
	return nil
}

// BeginEdit snapshots the tree and opens an edit.
func (s *Session) BeginEdit(context.Context) error {
	call := session.Call{Op: session.OpBeginEdit}
	if err := s.begin(call); err != nil {
		return err
	}
	if s.editing {
		return session.Failure(call, errEditing)
	}
	s.snapshot = s.st.clone()
	s.editing = true
	return nil
}

// Commit keeps the edited tree.
func (s *Session) Commit(context.Context) error {
	call := session.Call{Op: session.OpCommit}
	if err := s.begin(call); err != nil {
		return err
	}
	if !s.editing {
		return session.Failure(call, errNotEditing)
	}
	s.snapshot = nil
	s.editing = false
	return nil
}

// Discard restores the tree captured by BeginEdit.
func (s *Session) Discard(context.Context) error {
	call := session.Call{Op: session.OpDiscard}
	if err := s.begin(call); err != nil {
		return err
	}
	if !s.editing {
		return session.Failure(call, errNotEditing)
	}
	s.st = s.snapshot
	s.snapshot = nil
	s.editing = false
	if !s.navigable(s.current) {
		s.current = "/"
	}
	return nil
}

// Close marks the session closed. Closing twice is not an error.
func (s *Session) Close(context.Context) error {
	s.calls = append(s.calls, session.Call{Op: session.OpClose})
	s.closed = true
	return nil
}
