package models

// CampaignUpdate is one top-level campaign field edit. The set of implementations is closed:
// SetName, SetDescription, SetStartDate, SetEndDate.
type CampaignUpdate interface {
	Field() string
	applyCampaign(c CampaignConfig) CampaignConfig
}

// VoucherUpdate is one voucher field edit. The set of implementations is closed.
type VoucherUpdate interface {
	Field() string
	applyVoucher(v VoucherConfig) VoucherConfig
}

type (
	SetName        struct{ Value string }
	SetDescription struct{ Value string }
	SetStartDate   struct{ Value string }
	SetEndDate     struct{ Value string }
)

func (SetName) Field() string        { return "name" }
func (SetDescription) Field() string { return "description" }
func (SetStartDate) Field() string   { return "start_date" }
func (SetEndDate) Field() string     { return "end_date" }

func (u SetName) applyCampaign(c CampaignConfig) CampaignConfig        { c.Name = u.Value; return c }
func (u SetDescription) applyCampaign(c CampaignConfig) CampaignConfig { c.Description = u.Value; return c }
func (u SetStartDate) applyCampaign(c CampaignConfig) CampaignConfig   { c.StartDate = u.Value; return c }
func (u SetEndDate) applyCampaign(c CampaignConfig) CampaignConfig     { c.EndDate = u.Value; return c }

type (
	SetPrimaryColor       struct{ Value string }
	SetSecondaryColor     struct{ Value string }
	SetTextColor          struct{ Value string }
	SetTitle              struct{ Value string }
	SetVoucherDescription struct{ Value string }
	SetTerms              struct{ Value string }
	SetMaxRedemptions     struct{ Value int }
	SetValidityDays       struct{ Value int }
	SetDiscountType       struct{ Value DiscountType }
	SetDiscountValue      struct{ Value float64 }
)

func (SetPrimaryColor) Field() string       { return "primary_color" }
func (SetSecondaryColor) Field() string     { return "secondary_color" }
func (SetTextColor) Field() string          { return "text_color" }
func (SetTitle) Field() string              { return "title" }
func (SetVoucherDescription) Field() string { return "description" }
func (SetTerms) Field() string              { return "terms_and_conditions" }
func (SetMaxRedemptions) Field() string     { return "max_redemptions" }
func (SetValidityDays) Field() string       { return "validity_days" }
func (SetDiscountType) Field() string       { return "discount_type" }
func (SetDiscountValue) Field() string      { return "discount_value" }

func (u SetPrimaryColor) applyVoucher(v VoucherConfig) VoucherConfig {
	v.PrimaryColor = u.Value
	return v
}

func (u SetSecondaryColor) applyVoucher(v VoucherConfig) VoucherConfig {
	v.SecondaryColor = u.Value
	return v
}

func (u SetTextColor) applyVoucher(v VoucherConfig) VoucherConfig {
	v.TextColor = u.Value
	return v
}

func (u SetTitle) applyVoucher(v VoucherConfig) VoucherConfig {
	v.Title = u.Value
	return v
}

func (u SetVoucherDescription) applyVoucher(v VoucherConfig) VoucherConfig {
	v.Description = u.Value
	return v
}

func (u SetTerms) applyVoucher(v VoucherConfig) VoucherConfig {
	v.TermsAndConditions = u.Value
	return v
}

func (u SetMaxRedemptions) applyVoucher(v VoucherConfig) VoucherConfig {
	v.MaxRedemptions = u.Value
	return v
}

func (u SetValidityDays) applyVoucher(v VoucherConfig) VoucherConfig {
	v.ValidityDays = u.Value
	return v
}

func (u SetDiscountType) applyVoucher(v VoucherConfig) VoucherConfig {
	v.DiscountType = u.Value
	return v
}

func (u SetDiscountValue) applyVoucher(v VoucherConfig) VoucherConfig {
	v.DiscountValue = u.Value
	return v
}

// Apply returns a copy of c with the single field edit merged in.
func (c CampaignConfig) Apply(u CampaignUpdate) CampaignConfig {
	return u.applyCampaign(c)
}

// Apply returns a copy of v with every edit merged in, in order.
func (v VoucherConfig) Apply(updates ...VoucherUpdate) VoucherConfig {
	for _, u := range updates {
		v = u.applyVoucher(v)
	}
	return v
}

// ApplyVoucher returns a copy of c whose voucher has the edits merged in. Top-level fields are untouched.
func (c CampaignConfig) ApplyVoucher(updates ...VoucherUpdate) CampaignConfig {
	c.Voucher = c.Voucher.Apply(updates...)
	return c
}
