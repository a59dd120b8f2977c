package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSingleInputSource(t *testing.T) {
	assert.EqualError(t, ValidateSingleInputSource("none", "many"), "none")
	assert.EqualError(t, ValidateSingleInputSource("none", "many", false, false), "none")
	assert.NoError(t, ValidateSingleInputSource("none", "many", false, true))
	assert.EqualError(t, ValidateSingleInputSource("none", "many", true, true), "many")
}

func TestRequireSet(t *testing.T) {
	assert.NoError(t, RequireSet("missing", true))
	assert.EqualError(t, RequireSet("missing", false), "missing")
}
