package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLs(t *testing.T) {
	tests := []struct {
		name         string
		base         string
		localeHosts  []string
		registration string
		login        string
		landing      string
	}{
		{
			name:         "plain host",
			base:         "https://app.example.test/",
			registration: "https://app.example.test/create-account",
			login:        "https://app.example.test/sign-in",
			landing:      "https://app.example.test/en",
		},
		{
			name:         "localized host",
			base:         "https://www.ninox.com",
			localeHosts:  []string{"ninox.com"},
			registration: "https://www.ninox.com/en/create-account",
			login:        "https://www.ninox.com/en/sign-in",
			landing:      "https://www.ninox.com/en",
		},
		{
			name:         "locale list does not match",
			base:         "https://staging.example.test",
			localeHosts:  []string{"ninox.com", ""},
			registration: "https://staging.example.test/create-account",
			login:        "https://staging.example.test/sign-in",
			landing:      "https://staging.example.test/en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewURLs(tt.base, tt.localeHosts)
			assert.Equal(t, tt.registration, u.Registration())
			assert.Equal(t, tt.login, u.Login())
			assert.Equal(t, tt.landing, u.Landing())
		})
	}
}
