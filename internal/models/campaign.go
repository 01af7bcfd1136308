package models

import (
	"regexp"
)

// DiscountType is percentage or fixed.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid reports whether t is one of the two representable discount types.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Voucher defaults.
const (
	DefaultPrimaryColor       = "#8B5CF6"
	DefaultSecondaryColor     = "#22C55E"
	DefaultTextColor          = "#1F2937"
	DefaultVoucherTitle       = "Exclusive Reward"
	DefaultVoucherDescription = "Thank you for being a valued customer!"
	DefaultTerms              = "Valid for 30 days from issue date. Cannot be combined with other offers."
	DefaultMaxRedemptions     = 100
	DefaultValidityDays       = 30
	DefaultDiscountValue      = 10
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsHexColor reports whether s is a #RRGGBB color.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// VoucherConfig is the visual and content configuration of the reward voucher.
type VoucherConfig struct {
	PrimaryColor       string       `json:"primary_color"`
	SecondaryColor     string       `json:"secondary_color"`
	TextColor          string       `json:"text_color"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	TermsAndConditions string       `json:"terms_and_conditions"`
	MaxRedemptions     int          `json:"max_redemptions"`
	ValidityDays       int          `json:"validity_days"`
	DiscountType       DiscountType `json:"discount_type"`
	DiscountValue      float64      `json:"discount_value"`
}

// LogoFile describes the uploaded brand logo. The bytes live in the blob store.
type LogoFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Digest      string `json:"digest,omitempty"`
}

// CampaignConfig is the composite campaign draft owned by a studio session.
type CampaignConfig struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	StartDate      string        `json:"start_date"`
	EndDate        string        `json:"end_date"`
	LogoFile       *LogoFile     `json:"logo_file"`
	LogoDisplayURL string        `json:"logo_display_url"`
	Voucher        VoucherConfig `json:"voucher_config"`
}

// DefaultVoucherConfig returns the voucher configuration a new campaign starts with.
func DefaultVoucherConfig() VoucherConfig {
	return VoucherConfig{
		PrimaryColor:       DefaultPrimaryColor,
		SecondaryColor:     DefaultSecondaryColor,
		TextColor:          DefaultTextColor,
		Title:              DefaultVoucherTitle,
		Description:        DefaultVoucherDescription,
		TermsAndConditions: DefaultTerms,
		MaxRedemptions:     DefaultMaxRedemptions,
		ValidityDays:       DefaultValidityDays,
		DiscountType:       DiscountPercentage,
		DiscountValue:      DefaultDiscountValue,
	}
}

// NewCampaignConfig returns an empty campaign with default voucher settings.
func NewCampaignConfig() CampaignConfig {
	return CampaignConfig{Voucher: DefaultVoucherConfig()}
}

// WithLogo returns a copy of c pointing at the given logo. A nil file clears both fields.
func (c CampaignConfig) WithLogo(file *LogoFile, url string) CampaignConfig {
	if file == nil {
		c.LogoFile = nil
		c.LogoDisplayURL = ""
		return c
	}
	f := *file
	c.LogoFile = &f
	c.LogoDisplayURL = url
	return c
}

// Clone returns a deep copy safe to hand to other goroutines.
func (c CampaignConfig) Clone() CampaignConfig {
	if c.LogoFile != nil {
		f := *c.LogoFile
		c.LogoFile = &f
	}
	return c
}
