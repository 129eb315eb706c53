package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title string `json:"title" validate:"required,min=3,max=10"`
	Email string `json:"email" validate:"omitempty,email"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(sample{Title: "abc"}))

	err := Struct(sample{Title: "ab", Email: "nope", Kind: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title: must be at least 3 characters")
	assert.Contains(t, err.Error(), "email: must be a valid email")
	assert.Contains(t, err.Error(), "kind: must be one of a b")

	err = Struct(sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title: is required")
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("title", "hello", "min=3,max=100"))

	err := Var("title", "this title is far too long", "max=10")
	require.Error(t, err)
	assert.Equal(t, "title: must be at most 10 characters", err.Error())
}
