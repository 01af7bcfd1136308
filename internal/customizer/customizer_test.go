package customizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewardscraft/studio/internal/models"
)

func TestPresets_FixedTable(t *testing.T) {
	list := Presets()
	require.Len(t, list, 6)

	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Purple Gradient", "Blue Ocean", "Sunset", "Forest", "Rose Gold", "Midnight"}, names)

	list[0].Name = "changed"
	assert.Equal(t, "Purple Gradient", Presets()[0].Name)
}

func TestPresetByName(t *testing.T) {
	p, err := PresetByName("sunset")
	require.NoError(t, err)
	assert.Equal(t, "#F59E0B", p.Primary)
	assert.Equal(t, "#EF4444", p.Secondary)

	_, err = PresetByName("Neon")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestPreset_UpdatesSetBothColors(t *testing.T) {
	p, err := PresetByName("Forest")
	require.NoError(t, err)

	v := models.DefaultVoucherConfig().Apply(p.Updates()...)
	assert.Equal(t, "#10B981", v.PrimaryColor)
	assert.Equal(t, "#059669", v.SecondaryColor)
	assert.Equal(t, models.DefaultTextColor, v.TextColor)
}

func TestLoadPresets_RejectsBadColors(t *testing.T) {
	_, err := loadPresets([]byte("presets:\n  - name: Bad\n    primary: red\n    secondary: \"#000000\"\n"))
	assert.Error(t, err)

	_, err = loadPresets([]byte("presets: ["))
	assert.Error(t, err)
}

func TestField_NumericFallbackToZero(t *testing.T) {
	u, err := Field(ControlMaxRedemptions, "abc")
	require.NoError(t, err)
	assert.Equal(t, models.SetMaxRedemptions{Value: 0}, u)

	u, err = Field(ControlValidityDays, "")
	require.NoError(t, err)
	assert.Equal(t, models.SetValidityDays{Value: 0}, u)

	u, err = Field(ControlDiscountValue, "n/a")
	require.NoError(t, err)
	assert.Equal(t, models.SetDiscountValue{Value: 0}, u)
}

func TestParseInt(t *testing.T) {
	cases := map[string]int{
		"42":    42,
		" 7":    7,
		"12abc": 12,
		"3.9":   3,
		"-5":    -5,
		"+8":    8,
		"abc":   0,
		"":      0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseInt(in), "input %q", in)
	}
}

func TestParseInt_ClampsOverflow(t *testing.T) {
	assert.Equal(t, math.MaxInt, ParseInt("99999999999999999999"))
	assert.Equal(t, math.MaxInt, ParseInt("+99999999999999999999 uses"))
	assert.Equal(t, math.MinInt, ParseInt("-99999999999999999999"))

	u, err := Field(ControlMaxRedemptions, "99999999999999999999")
	require.NoError(t, err)
	assert.Equal(t, models.SetMaxRedemptions{Value: math.MaxInt}, u)
}

func TestParseFloat(t *testing.T) {
	cases := map[string]float64{
		"12.5":   12.5,
		"25":     25,
		".5":     0.5,
		"10%":    10,
		"1e2":    100,
		"-3.25x": -3.25,
		"x1":     0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseFloat(in), "input %q", in)
	}
}

func TestField_DiscountTypeLimitedToTwoValues(t *testing.T) {
	u, err := Field(ControlDiscountType, "fixed")
	require.NoError(t, err)
	assert.Equal(t, models.SetDiscountType{Value: models.DiscountFixed}, u)

	_, err = Field(ControlDiscountType, "bogo")
	assert.ErrorIs(t, err, models.ErrInvalidValue)
}

func TestField_TextControls(t *testing.T) {
	u, err := Field(ControlTerms, "No refunds.")
	require.NoError(t, err)
	assert.Equal(t, "terms_and_conditions", u.Field())

	u, err = Field(ControlDescription, "Thanks")
	require.NoError(t, err)
	assert.Equal(t, models.SetVoucherDescription{Value: "Thanks"}, u)

	_, err = Field("logo", "x")
	assert.ErrorIs(t, err, models.ErrUnknownField)
}

func TestDiscountInput(t *testing.T) {
	v := models.DefaultVoucherConfig()
	in := DiscountInput(v)
	require.NotNil(t, in.Max)
	assert.Equal(t, 100.0, *in.Max)
	assert.Equal(t, "%", in.Unit)

	v.DiscountType = models.DiscountFixed
	in = DiscountInput(v)
	assert.Nil(t, in.Max)
	assert.Equal(t, "$", in.Unit)
	assert.Equal(t, "25", in.Placeholder)
}
