package session

import (
	"errors"
	"testing"

	"github.com/erraggy/modeltools/modelerrors"
	"github.com/stretchr/testify/assert"
)

func TestCallString(t *testing.T) {
	assert.Equal(t, "create /Server ms1 (Server)", Call{Op: OpCreate, Path: "/Server", Name: "ms1", Type: "Server"}.String())
	assert.Equal(t, "set /Server/ms1 ListenPort=7001", Call{Op: OpSet, Path: "/Server/ms1", Name: "ListenPort", Value: int64(7001)}.String())
	assert.Equal(t, "delete /Server ms2", Call{Op: OpDelete, Path: "/Server", Name: "ms2"}.String())
	assert.Equal(t, "navigate /Server/ms1", Call{Op: OpNavigate, Path: "/Server/ms1"}.String())
	assert.Equal(t, "commit", Call{Op: OpCommit}.String())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/Server/ms1", Join("/Server", "ms1"))
	assert.Equal(t, "/ms1", Join("/", "ms1"))
	assert.Equal(t, "/Server", Clean("Server/"))
	assert.Equal(t, "/", Clean(""))
}

func TestFailure(t *testing.T) {
	cause := errors.New("lock timeout")
	err := Failure(Call{Op: OpBeginEdit}, cause)
	assert.ErrorIs(t, err, modelerrors.ErrSession)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "session failure: begin_edit: lock timeout", err.Error())
}
