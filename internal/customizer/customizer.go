// Package customizer maps voucher design form controls onto typed voucher edits.
// It holds no state: every control value becomes exactly one models.VoucherUpdate.
package customizer

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rewardscraft/studio/internal/models"
)

// Form control names, as posted by the design tab.
const (
	ControlPrimaryColor   = "primary_color"
	ControlSecondaryColor = "secondary_color"
	ControlTextColor      = "text_color"
	ControlTitle          = "title"
	ControlDescription    = "description"
	ControlTerms          = "terms_and_conditions"
	ControlDiscountType   = "discount_type"
	ControlDiscountValue  = "discount_value"
	ControlValidityDays   = "validity_days"
	ControlMaxRedemptions = "max_redemptions"
)

var (
	intPrefix   = regexp.MustCompile(`^\s*[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Field converts one raw control value into a voucher edit.
// Numeric controls never fail: unparseable text becomes 0.
func Field(control, raw string) (models.VoucherUpdate, error) {
	switch control {
	case ControlPrimaryColor:
		return models.SetPrimaryColor{Value: raw}, nil
	case ControlSecondaryColor:
		return models.SetSecondaryColor{Value: raw}, nil
	case ControlTextColor:
		return models.SetTextColor{Value: raw}, nil
	case ControlTitle:
		return models.SetTitle{Value: raw}, nil
	case ControlDescription:
		return models.SetVoucherDescription{Value: raw}, nil
	case ControlTerms:
		return models.SetTerms{Value: raw}, nil
	case ControlDiscountType:
		t := models.DiscountType(raw)
		if !t.Valid() {
			return nil, fmt.Errorf("discount type %q: %w", raw, models.ErrInvalidValue)
		}
		return models.SetDiscountType{Value: t}, nil
	case ControlDiscountValue:
		return models.SetDiscountValue{Value: ParseFloat(raw)}, nil
	case ControlValidityDays:
		return models.SetValidityDays{Value: ParseInt(raw)}, nil
	case ControlMaxRedemptions:
		return models.SetMaxRedemptions{Value: ParseInt(raw)}, nil
	}
	return nil, fmt.Errorf("control %q: %w", control, models.ErrUnknownField)
}

// ParseInt reads the leading integer of s, or 0 when there is none. Values beyond the
// int range are clamped.
func ParseInt(s string) int {
	m := intPrefix.FindString(s)
	if m == "" {
		return 0
	}
	m = strings.TrimSpace(m)
	n, err := strconv.Atoi(m)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(m, "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	if err != nil {
		return 0
	}
	return n
}

// ParseFloat reads the leading decimal number of s, or 0 when there is none.
func ParseFloat(s string) float64 {
	m := floatPrefix.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return 0
	}
	return f
}

// NumberInput describes the advisory bounds the form shows for a numeric control.
type NumberInput struct {
	Min         float64  `json:"min"`
	Max         *float64 `json:"max,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Placeholder string   `json:"placeholder"`
}

// DiscountInput returns the discount value control for the current discount type.
func DiscountInput(v models.VoucherConfig) NumberInput {
	if v.DiscountType == models.DiscountPercentage {
		hundred := 100.0
		return NumberInput{Min: 0, Max: &hundred, Unit: "%", Placeholder: "10"}
	}
	return NumberInput{Min: 0, Unit: "$", Placeholder: "25"}
}

// CountInput returns the control for validity days and max redemptions.
func CountInput(placeholder string) NumberInput {
	return NumberInput{Min: 1, Placeholder: placeholder}
}
