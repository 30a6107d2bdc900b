package pages

import (
	"os"
	"path/filepath"
	"testing"

	"signup-e2e/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_HasEveryRequiredElement(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	for page, names := range required {
		for _, name := range names {
			assert.NotPanics(t, func() {
				assert.Positive(t, c.Strategy(page, name).Len())
			}, "%s.%s", page, name)
		}
	}
	assert.Contains(t, c.Keys(), "registration.email_field")
}

func TestDefaultCatalog_RegistrationEmailOrder(t *testing.T) {
	c := MustDefaultCatalog()
	sels := c.Strategy("registration", "email_field").Selectors()
	require.Len(t, sels, 4)
	assert.Equal(t, entity.ID("email"), sels[0])
	assert.Equal(t, entity.Name("email"), sels[1])
	assert.Equal(t, entity.XPath("//input[@type='email']"), sels[2])
}

func TestCatalog_UnknownKeyPanics(t *testing.T) {
	assert.Panics(t, func() { MustDefaultCatalog().Strategy("registration", "nope") })
}

func writeOverride(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCatalog_OverrideReplacesElement(t *testing.T) {
	path := writeOverride(t, `
registration:
  email_field:
    - {by: css, expr: "input.signup-email"}
`)
	c, err := LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, []entity.Selector{entity.CSS("input.signup-email")},
		c.Strategy("registration", "email_field").Selectors())
	assert.Equal(t, entity.ID("password"),
		c.Strategy("registration", "password_field").Selectors()[0])
}

func TestLoadCatalog_RejectsInvalidSelectors(t *testing.T) {
	path := writeOverride(t, `
login:
  login_button:
    - {by: text, expr: "Log in"}
  email_field: []
`)
	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "login.email_field: no selectors")
	assert.ErrorContains(t, err, `login.login_button[0]: invalid selector`)
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read selector overrides")
}

func TestCatalog_OverlayDescriptor(t *testing.T) {
	d := MustDefaultCatalog().Overlay()
	require.True(t, d.Enabled())
	names := make([]string, 0, len(d.Actions))
	for _, a := range d.Actions {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"accept_all", "accept", "reject", "close"}, names)
	assert.True(t, d.Escape)
	assert.True(t, d.BodyClick)
}
