package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCampaignConfig_Defaults(t *testing.T) {
	c := NewCampaignConfig()

	assert.Empty(t, c.Name)
	assert.Empty(t, c.StartDate)
	assert.Nil(t, c.LogoFile)
	assert.Empty(t, c.LogoDisplayURL)
	assert.Equal(t, "#8B5CF6", c.Voucher.PrimaryColor)
	assert.Equal(t, "#22C55E", c.Voucher.SecondaryColor)
	assert.Equal(t, "#1F2937", c.Voucher.TextColor)
	assert.Equal(t, "Exclusive Reward", c.Voucher.Title)
	assert.Equal(t, 100, c.Voucher.MaxRedemptions)
	assert.Equal(t, 30, c.Voucher.ValidityDays)
	assert.Equal(t, DiscountPercentage, c.Voucher.DiscountType)
	assert.Equal(t, float64(10), c.Voucher.DiscountValue)
}

func TestApply_CampaignFieldLeavesOthersAlone(t *testing.T) {
	before := NewCampaignConfig()
	after := before.Apply(SetName{Value: "Summer Sale"})

	assert.Equal(t, "Summer Sale", after.Name)
	assert.Empty(t, before.Name, "original value must not be mutated")
	after.Name = before.Name
	assert.Equal(t, before, after)
}

func TestApplyVoucher_UnrelatedFieldsUnchanged(t *testing.T) {
	updates := []VoucherUpdate{
		SetTitle{Value: "Hi"},
		SetMaxRedemptions{Value: 5},
		SetDiscountType{Value: DiscountFixed},
		SetTextColor{Value: "#000000"},
		SetDiscountValue{Value: 42.5},
	}
	c := NewCampaignConfig().Apply(SetDescription{Value: "top level"})
	for _, u := range updates {
		next := c.ApplyVoucher(u)

		assert.Equal(t, c.Description, next.Description)
		assert.Equal(t, c.Name, next.Name)

		// Reapplying the old value of the touched field must restore equality.
		restored := next
		restored.Voucher = restoreField(u.Field(), next.Voucher, c.Voucher)
		assert.Equal(t, c, restored, "field %s leaked into other fields", u.Field())
		c = next
	}
	assert.Equal(t, "Hi", c.Voucher.Title)
	assert.Equal(t, 5, c.Voucher.MaxRedemptions)
	assert.Equal(t, DiscountFixed, c.Voucher.DiscountType)
	assert.Equal(t, 42.5, c.Voucher.DiscountValue)
}

func restoreField(field string, v, old VoucherConfig) VoucherConfig {
	switch field {
	case "title":
		v.Title = old.Title
	case "max_redemptions":
		v.MaxRedemptions = old.MaxRedemptions
	case "discount_type":
		v.DiscountType = old.DiscountType
	case "text_color":
		v.TextColor = old.TextColor
	case "discount_value":
		v.DiscountValue = old.DiscountValue
	}
	return v
}

func TestApplyVoucher_MultipleEditsOneTransition(t *testing.T) {
	c := NewCampaignConfig().ApplyVoucher(
		SetPrimaryColor{Value: "#F59E0B"},
		SetSecondaryColor{Value: "#EF4444"},
	)
	assert.Equal(t, "#F59E0B", c.Voucher.PrimaryColor)
	assert.Equal(t, "#EF4444", c.Voucher.SecondaryColor)
}

func TestWithLogo(t *testing.T) {
	file := &LogoFile{Name: "logo.png", ContentType: "image/png", Size: 10}
	c := NewCampaignConfig().WithLogo(file, "/logos/abc")
	require.NotNil(t, c.LogoFile)
	assert.Equal(t, "/logos/abc", c.LogoDisplayURL)

	file.Name = "mutated"
	assert.Equal(t, "logo.png", c.LogoFile.Name)

	cleared := c.WithLogo(nil, "ignored")
	assert.Nil(t, cleared.LogoFile)
	assert.Empty(t, cleared.LogoDisplayURL)
}

func TestDecodeCampaignUpdate(t *testing.T) {
	u, err := DecodeCampaignUpdate(Command{Op: "start_date", Value: json.RawMessage(`"2025-06-01"`)})
	require.NoError(t, err)
	assert.Equal(t, SetStartDate{Value: "2025-06-01"}, u)

	_, err = DecodeCampaignUpdate(Command{Op: "logo_file", Value: json.RawMessage(`"x"`)})
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = DecodeCampaignUpdate(Command{Op: "name", Value: json.RawMessage(`12`)})
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestDecodeVoucherUpdate(t *testing.T) {
	cases := []struct {
		op   string
		raw  string
		want VoucherUpdate
	}{
		{"primary_color", `"#111111"`, SetPrimaryColor{Value: "#111111"}},
		{"description", `"thanks"`, SetVoucherDescription{Value: "thanks"}},
		{"terms_and_conditions", `""`, SetTerms{Value: ""}},
		{"max_redemptions", `7`, SetMaxRedemptions{Value: 7}},
		{"validity_days", `14`, SetValidityDays{Value: 14}},
		{"discount_type", `"fixed"`, SetDiscountType{Value: DiscountFixed}},
		{"discount_value", `12.5`, SetDiscountValue{Value: 12.5}},
	}
	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			got, err := DecodeVoucherUpdate(Command{Op: tc.op, Value: json.RawMessage(tc.raw)})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.op, got.Field())
		})
	}
}

func TestDecodeVoucherUpdate_Rejects(t *testing.T) {
	_, err := DecodeVoucherUpdate(Command{Op: "discount_type", Value: json.RawMessage(`"bogo"`)})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = DecodeVoucherUpdate(Command{Op: "max_redemptions", Value: json.RawMessage(`"ten"`)})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = DecodeVoucherUpdate(Command{Op: "logo", Value: json.RawMessage(`1`)})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestAdvisories(t *testing.T) {
	c := NewCampaignConfig()
	assert.Empty(t, c.Advisories())

	c = c.Apply(SetStartDate{Value: "2025-07-10"}).Apply(SetEndDate{Value: "2025-07-01"})
	c = c.ApplyVoucher(
		SetPrimaryColor{Value: "purple"},
		SetMaxRedemptions{Value: 0},
		SetDiscountValue{Value: 150},
	)
	fields := make([]string, 0)
	for _, a := range c.Advisories() {
		fields = append(fields, a.Field)
	}
	assert.Equal(t, []string{"end_date", "primary_color", "max_redemptions", "discount_value"}, fields)

	fixed := c.ApplyVoucher(SetDiscountType{Value: DiscountFixed})
	for _, a := range fixed.Advisories() {
		assert.NotEqual(t, "discount_value", a.Field, "fixed discounts have no upper bound")
	}
}
