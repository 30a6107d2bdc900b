package suite

import (
	"context"

	"signup-e2e/internal/domain/entity"
	"signup-e2e/internal/usecase/harness"
)

const (
	businessFullName  = "QA Automation"
	businessCompany   = "Example Testing GmbH"
	businessIndustry  = "Software"
	businessSize      = "1-10"
	businessCountry   = "Germany"
	businessTelephone = "+49 30 1234567"
)

func businessCases(s Settings) []harness.Case {
	return []harness.Case{
		{
			Name:   "business_profile_form",
			Groups: []string{GroupUI, GroupBusiness},
			Setup:  openRegistration,
			Body:   businessProfileForm,
		},
	}
}

// businessProfileForm signs up a work user and completes the profile form
// that follows. It skips when the flow never reaches that form.
func businessProfileForm(ctx context.Context, env *harness.Env) error {
	reg := env.Registration()
	user := env.Data.WorkUser()
	if reg.IsAccountTypeAvailable(ctx, entity.AccountWork) {
		if err := reg.SelectAccountType(ctx, entity.AccountWork); err != nil {
			return err
		}
	}
	if err := fillSignup(ctx, reg, user.Email, user.Password); err != nil {
		return err
	}
	if _, err := reg.CreateAccount(ctx); err != nil {
		return err
	}

	business := env.Business()
	if err := business.WaitForLoad(ctx); err != nil {
		return harness.Skip("business profile not reachable: %v", err)
	}

	if err := firstErr(
		func() error { return business.EnterFullName(ctx, businessFullName) },
		func() error { return business.EnterCompanyName(ctx, businessCompany) },
	); err != nil {
		return err
	}

	for _, choose := range []struct {
		name string
		fn   func(context.Context, string) error
		val  string
	}{
		{"industry", business.SelectIndustry, businessIndustry},
		{"company_size", business.SelectCompanySize, businessSize},
		{"country", business.SelectCountry, businessCountry},
	} {
		if err := choose.fn(ctx, choose.val); err != nil {
			env.Log.Warn("Dropdown selection failed", "element", choose.name, "error", err)
		}
	}
	if err := business.EnterTelephone(ctx, businessTelephone); err != nil {
		return err
	}

	if err := expect(business.IsSaveProfileEnabled(ctx), "save profile disabled after filling the form"); err != nil {
		return err
	}
	if _, err := business.SaveProfile(ctx); err != nil {
		return err
	}
	return expect(business.IsRedirectedAfterSaveProfile(ctx), "still on business profile after saving")
}
