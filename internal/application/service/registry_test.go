package service

import (
	"testing"

	"signup-e2e/internal/application/port/input"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry[int] {
	t.Helper()
	r := NewRegistry[int]()
	require.NoError(t, r.Register("page_accessibility", 1, "smoke"))
	require.NoError(t, r.Register("invalid_email", 2, "negative", "validation"))
	require.NoError(t, r.Register("weak_password", 3, "negative"))
	require.NoError(t, r.Register("login_empty", 4, "login"))
	return r
}

func TestRegistry_KeepsRegistrationOrder(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, []string{"page_accessibility", "invalid_email", "weak_password", "login_empty"}, r.Names())
	assert.Equal(t, []int{1, 2, 3, 4}, r.All())

	v, ok := r.Get("weak_password")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RejectsDuplicatesAndBlanks(t *testing.T) {
	r := newTestRegistry(t)
	assert.ErrorIs(t, r.Register("invalid_email", 9), ErrDuplicateName)
	assert.Error(t, r.Register("  ", 9))
	assert.Panics(t, func() { r.MustRegister("weak_password", 9) })
}

func TestRegistry_Groups(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, []string{"login", "negative", "smoke", "validation"}, r.Groups())
	assert.Equal(t, []string{"negative", "validation"}, r.GroupsOf("invalid_email"))
}

func TestRegistry_Select(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name   string
		filter input.RunFilter
		want   []string
	}{
		{"empty filter selects all", input.RunFilter{}, r.Names()},
		{"by group", input.RunFilter{Groups: []string{"negative"}}, []string{"invalid_email", "weak_password"}},
		{"by name", input.RunFilter{Names: []string{"login_empty"}}, []string{"login_empty"}},
		{
			"union keeps registration order",
			input.RunFilter{Groups: []string{"smoke"}, Names: []string{"login_empty", "invalid_email"}},
			[]string{"page_accessibility", "invalid_email", "login_empty"},
		},
		{"unknown group selects nothing", input.RunFilter{Groups: []string{"perf"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Select(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_SelectUnknownName(t *testing.T) {
	_, err := newTestRegistry(t).Select(input.RunFilter{Names: []string{"nope"}})
	assert.ErrorIs(t, err, ErrUnknownName)
	assert.ErrorContains(t, err, "nope")
}
