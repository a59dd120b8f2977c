package severity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		name     string
		severity Severity
		expected string
	}{
		{"error level", SeverityError, "error"},
		{"warning level", SeverityWarning, "warning"},
		{"info level", SeverityInfo, "info"},
		{"critical level", SeverityCritical, "critical"},

		// Edge cases: Invalid severity values
		{"unknown negative", Severity(-1), "unknown"},
		{"unknown large value", Severity(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.String())
		})
	}
}

func TestSeverityOrdering(t *testing.T) {
	assert.Less(t, SeverityInfo, SeverityWarning)
	assert.Less(t, SeverityWarning, SeverityError)
	assert.Less(t, SeverityError, SeverityCritical)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Warning", SeverityWarning.Label())
	assert.Equal(t, "Critical", SeverityCritical.Label())
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Severity{
		"info":     SeverityInfo,
		"WARN":     SeverityWarning,
		"Warning":  SeverityWarning,
		" error ":  SeverityError,
		"critical": SeverityCritical,
	} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := Parse("fatal")
	assert.Error(t, err)
}

func TestWorstAndExitCode(t *testing.T) {
	_, ok := Worst()
	assert.False(t, ok)
	assert.Equal(t, 0, ExitCode())

	worst, ok := Worst(SeverityInfo, SeverityError, SeverityWarning)
	assert.True(t, ok)
	assert.Equal(t, SeverityError, worst)

	assert.Equal(t, 0, ExitCode(SeverityInfo))
	assert.Equal(t, 1, ExitCode(SeverityInfo, SeverityWarning))
	assert.Equal(t, 2, ExitCode(SeverityError, SeverityWarning))
	assert.Equal(t, 3, ExitCode(SeverityCritical))
}

func TestTextMarshaling(t *testing.T) {
	data, err := json.Marshal(map[string]Severity{"level": SeverityWarning})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"warning"}`, string(data))

	var back map[string]Severity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, SeverityWarning, back["level"])

	var s Severity
	assert.Error(t, s.UnmarshalText([]byte("loud")))
}
