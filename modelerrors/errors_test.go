package modelerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnknownLocationError(t *testing.T) {
	t.Run("attribute with path and gating", func(t *testing.T) {
		err := &UnknownLocationError{
			Section:      "topology",
			Path:         "topology:/Server/ms1",
			Attribute:    "LegacyPort",
			VersionGated: true,
			Message:      "valid for [10,12)",
		}
		want := `unknown location: attribute "LegacyPort" at topology:/Server/ms1 (not valid for the target version or mode): valid for [10,12)`
		if err.Error() != want {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("folder in section", func(t *testing.T) {
		err := &UnknownLocationError{Section: "resources", Folder: "Bogus"}
		if err.Error() != `unknown location: folder "Bogus" in section resources` {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("minimal", func(t *testing.T) {
		if (&UnknownLocationError{}).Error() != "unknown location" {
			t.Error("unexpected minimal message")
		}
	})

	t.Run("errors.Is through wrapping", func(t *testing.T) {
		err := fmt.Errorf("resolver: %w", &UnknownLocationError{Folder: "X"})
		if !errors.Is(err, ErrUnknownLocation) {
			t.Error("expected ErrUnknownLocation")
		}
		if errors.Is(err, ErrSession) {
			t.Error("did not expect ErrSession")
		}
		var ul *UnknownLocationError
		if !errors.As(err, &ul) || ul.Folder != "X" {
			t.Error("errors.As should extract the typed error")
		}
	})
}

func TestAttributeTypeMismatchError(t *testing.T) {
	err := &AttributeTypeMismatchError{Path: "topology:/Server/ms1", Attribute: "ListenPort", Expected: "integer", Value: "abc"}
	if err.Error() != "attribute type mismatch: ListenPort expects integer, got string at topology:/Server/ms1" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrAttributeTypeMismatch) {
		t.Error("expected ErrAttributeTypeMismatch")
	}
}

func TestUnsupportedCombinationError(t *testing.T) {
	err := &UnsupportedCombinationError{Path: "topology:/Cluster/c1/DynamicServers", Attribute: "DynamicClusterSize", Message: "requires ServerTemplate"}
	if err.Error() != "unsupported combination for DynamicClusterSize at topology:/Cluster/c1/DynamicServers: requires ServerTemplate" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrUnsupportedCombination) {
		t.Error("expected ErrUnsupportedCombination")
	}
	if (&UnsupportedCombinationError{}).Error() != "unsupported combination" {
		t.Error("unexpected minimal message")
	}
}

func TestSessionError(t *testing.T) {
	cause := errors.New("edit lock timed out")
	err := &SessionError{Op: "begin_edit", Cause: cause}
	if err.Error() != "session failure: begin_edit: edit lock timed out" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrSession) {
		t.Error("expected ErrSession")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}

	withPath := &SessionError{Op: "create", Path: "/Server", Name: "ms1"}
	if withPath.Error() != "session failure: create /Server (ms1)" {
		t.Errorf("unexpected error message: %s", withPath.Error())
	}
	if withPath.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("bad range")
	err := &ConfigError{Option: "topology/Server/version", Value: "[x", Message: "invalid version range", Cause: cause}
	if err.Error() != "configuration error for topology/Server/version: invalid version range: bad range" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrConfig) || !errors.Is(err, cause) {
		t.Error("expected ErrConfig and cause")
	}
	if (&ConfigError{}).Error() != "configuration error" {
		t.Error("unexpected minimal message")
	}
}
