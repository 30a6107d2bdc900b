package pages

import (
	"context"
	"fmt"
	"strings"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/browsercore"
)

// Business is the profile form shown after a work account signs up.
type Business struct {
	page
}

func NewBusiness(core *browsercore.Core, opts Options) *Business {
	return &Business{page: newPage(core, opts, "business")}
}

func (b *Business) WaitForLoad(ctx context.Context) error {
	ok := b.core.Poll(ctx, b.core.Timings().Timeout, func(ctx context.Context) bool {
		return b.URLContains(ctx, "business-signup") || b.core.Exists(ctx, b.strategy("full_name"))
	})
	if !ok {
		return fmt.Errorf("business profile page did not load (url %s)", b.CurrentURL(ctx))
	}
	b.core.DismissBlockingOverlays(ctx)
	return nil
}

func (b *Business) EnterFullName(ctx context.Context, name string) error {
	return b.fill(ctx, field{name: "full_name", strategy: b.strategy("full_name")}, name)
}

func (b *Business) EnterCompanyName(ctx context.Context, company string) error {
	return b.fill(ctx, field{name: "company", strategy: b.strategy("company")}, company)
}

// EnterTelephone fills the optional phone field. A missing field is not an error.
func (b *Business) EnterTelephone(ctx context.Context, phone string) error {
	s := b.strategy("telephone")
	if _, ok := b.probe(ctx, s); !ok {
		b.log.Info("Telephone field not present, skipping")
		return nil
	}
	return b.fill(ctx, field{name: "telephone", strategy: s}, phone)
}

func (b *Business) SelectIndustry(ctx context.Context, value string) error {
	return b.choose(ctx, "industry", value)
}

func (b *Business) SelectCompanySize(ctx context.Context, value string) error {
	return b.choose(ctx, "company_size", value)
}

func (b *Business) SelectCountry(ctx context.Context, value string) error {
	return b.choose(ctx, "country", value)
}

// choose opens a dropdown and picks the first option whose text contains
// value, falling back to the first option offered.
func (b *Business) choose(ctx context.Context, name, value string) error {
	el, err := b.core.Locate(ctx, b.strategy(name), 0)
	if err != nil {
		return err
	}
	if _, err := b.core.Click(ctx, el, name); err != nil {
		return err
	}

	var options []output.ElementPort
	b.core.Poll(ctx, b.opts.Probe, func(ctx context.Context) bool {
		options = b.core.LocateAll(ctx, b.strategy("dropdown_options"))
		return len(options) > 0
	})
	if len(options) == 0 {
		return fmt.Errorf("%s: no options after opening dropdown", name)
	}

	pick, label := options[0], ""
	want := lower(value)
	for _, opt := range options {
		text, err := opt.Text(ctx)
		if err != nil {
			continue
		}
		if want != "" && strings.Contains(lower(text), want) {
			pick, label = opt, text
			break
		}
	}
	if label == "" {
		b.log.Warn("Option not found, using first", "element", name, "want", value)
	}
	if _, err := b.core.Click(ctx, pick, name+"_option"); err != nil {
		return err
	}
	b.log.Info("Selected option", "element", name, "option", label)
	return nil
}

func (b *Business) SaveProfile(ctx context.Context) (browsercore.InteractionResult, error) {
	return b.submit(ctx, "save_profile", b.strategy("save_profile"),
		field{name: "full_name", strategy: b.strategy("full_name")},
		field{name: "company", strategy: b.strategy("company")},
	)
}

func (b *Business) IsRedirectedAfterSaveProfile(ctx context.Context) bool {
	return b.waitForURLWithout(ctx, b.opts.RedirectWait, "business-signup")
}

func (b *Business) IsSaveProfileEnabled(ctx context.Context) bool {
	return b.isEnabled(ctx, b.strategy("save_profile"))
}
