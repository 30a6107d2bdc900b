package pages

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"signup-e2e/internal/browsercore"
	"signup-e2e/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed selectors.yaml
var defaultSelectors []byte

// required lists every element a page object looks up; a catalog missing one is rejected at load.
var required = map[string][]string{
	"overlay":      {"container", "accept_all", "accept", "reject", "close"},
	"common":       {"sign_in_link", "error_messages"},
	"registration": {"email_field", "password_field", "marketing_checkbox", "create_account_button", "google_button", "field_errors", "personal_option", "work_option", "book_demo"},
	"login":        {"email_field", "password_field", "login_button"},
	"business":     {"full_name", "company", "industry", "company_size", "country", "dropdown_options", "telephone", "save_profile"},
	"landing":      {"try_for_free"},
}

type tables map[string]map[string][]entity.Selector

// Catalog holds the selector strategies for every page element.
type Catalog struct {
	strategies map[string]entity.Strategy
}

func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog("")
}

// LoadCatalog parses the embedded tables and, when overridePath is set,
// replaces individual elements with the ones found in that file.
func LoadCatalog(overridePath string) (*Catalog, error) {
	base, err := parseTables(defaultSelectors)
	if err != nil {
		return nil, fmt.Errorf("parse embedded selectors: %w", err)
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read selector overrides: %w", err)
		}
		overrides, err := parseTables(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", overridePath, err)
		}
		for page, elements := range overrides {
			if base[page] == nil {
				base[page] = make(map[string][]entity.Selector)
			}
			for name, sels := range elements {
				base[page][name] = sels
			}
		}
	}

	return newCatalog(base)
}

// MustDefaultCatalog panics if the embedded tables are broken.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

func parseTables(data []byte) (tables, error) {
	var t tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t == nil {
		t = tables{}
	}
	return t, nil
}

func newCatalog(t tables) (*Catalog, error) {
	c := &Catalog{strategies: make(map[string]entity.Strategy)}

	var problems []string
	for page, elements := range t {
		for name, sels := range elements {
			key := page + "." + name
			if len(sels) == 0 {
				problems = append(problems, key+": no selectors")
				continue
			}
			for i, s := range sels {
				if !s.By.Valid() || strings.TrimSpace(s.Expr) == "" {
					problems = append(problems, fmt.Sprintf("%s[%d]: invalid selector %q", key, i, s.String()))
				}
			}
			c.strategies[key] = entity.NewStrategy(key, sels...)
		}
	}
	for page, names := range required {
		for _, name := range names {
			if _, ok := c.strategies[page+"."+name]; !ok {
				problems = append(problems, page+"."+name+": missing")
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, fmt.Errorf("selector catalog: %s", strings.Join(problems, "; "))
	}
	return c, nil
}

// Strategy returns the strategy for page.element. Lookups of required keys cannot fail.
func (c *Catalog) Strategy(page, element string) entity.Strategy {
	s, ok := c.strategies[page+"."+element]
	if !ok {
		panic(fmt.Sprintf("selector catalog has no %s.%s", page, element))
	}
	return s
}

func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.strategies))
	for k := range c.strategies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Overlay builds the consent banner descriptor: accept-all by id, accept by
// text, reject, close, then Escape and a click on the page body.
func (c *Catalog) Overlay() browsercore.OverlayDescriptor {
	action := func(name string) browsercore.OverlayAction {
		return browsercore.OverlayAction{Name: name, Strategy: c.Strategy("overlay", name)}
	}
	return browsercore.OverlayDescriptor{
		Container: c.Strategy("overlay", "container"),
		Actions: []browsercore.OverlayAction{
			action("accept_all"),
			action("accept"),
			action("reject"),
			action("close"),
		},
		Escape:    true,
		BodyClick: true,
	}
}
