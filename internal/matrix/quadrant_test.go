package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		important bool
		urgent    bool
		want      Quadrant
		label     string
	}{
		{true, true, Q1, "do first"},
		{true, false, Q2, "schedule"},
		{false, true, Q3, "delegate"},
		{false, false, Q4, "eliminate"},
	}

	for _, tt := range tests {
		got := Classify(tt.important, tt.urgent)
		assert.Equal(t, tt.want, got, "important=%v urgent=%v", tt.important, tt.urgent)
		assert.Equal(t, tt.label, got.Label())
		assert.True(t, got.Valid())
	}
}

func TestClassify_Deterministic(t *testing.T) {
	now := mustTime(t, "2025-03-10T09:00:00Z")
	deadline := now.Add(36 * day)

	first := Classify(true, IsUrgent(&deadline, now))
	second := Classify(true, IsUrgent(&deadline, now))
	assert.Equal(t, first, second)
	assert.Equal(t, Q2, first)
}

func TestParseQuadrant(t *testing.T) {
	q, err := ParseQuadrant(" q3 ")
	require.NoError(t, err)
	assert.Equal(t, Q3, q)

	for _, bad := range []string{"", "Q5", "Q", "urgent"} {
		_, err := ParseQuadrant(bad)
		assert.True(t, errors.Is(err, ErrUnknownQuadrant), "input %q", bad)
	}
}

func TestAll(t *testing.T) {
	assert.Equal(t, []Quadrant{Q1, Q2, Q3, Q4}, All())
	assert.Equal(t, "", Quadrant("Q9").Label())
}
