package pages

import (
	"net/url"
	"strings"
)

// URLs derives page addresses from the base URL. Hosts listed as localized
// serve the account pages under /en.
type URLs struct {
	Base      string
	Localized bool
}

func NewURLs(base string, localeHosts []string) URLs {
	base = strings.TrimRight(base, "/")
	host := base
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	localized := false
	for _, h := range localeHosts {
		if h != "" && strings.Contains(host, h) {
			localized = true
			break
		}
	}
	return URLs{Base: base, Localized: localized}
}

func (u URLs) path(p string) string {
	if u.Localized {
		return u.Base + "/en" + p
	}
	return u.Base + p
}

func (u URLs) Registration() string {
	return u.path("/create-account")
}

func (u URLs) Login() string {
	return u.path("/sign-in")
}

func (u URLs) Landing() string {
	return u.Base + "/en"
}
