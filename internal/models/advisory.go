package models

import "time"

// Advisory is a soft-invariant violation. Advisories are informational and never block a save.
type Advisory struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const isoDate = "2006-01-02"

// Advisories lists the soft invariants the campaign currently violates, in field order.
func (c CampaignConfig) Advisories() []Advisory {
	var out []Advisory
	if c.StartDate != "" && c.EndDate != "" {
		start, errStart := time.Parse(isoDate, c.StartDate)
		end, errEnd := time.Parse(isoDate, c.EndDate)
		if errStart == nil && errEnd == nil && end.Before(start) {
			out = append(out, Advisory{Field: "end_date", Message: "end date is before start date"})
		}
	}
	return append(out, c.Voucher.Advisories()...)
}

// Advisories lists the soft invariants the voucher currently violates.
func (v VoucherConfig) Advisories() []Advisory {
	var out []Advisory
	for _, col := range []struct{ field, value string }{
		{"primary_color", v.PrimaryColor},
		{"secondary_color", v.SecondaryColor},
		{"text_color", v.TextColor},
	} {
		if !IsHexColor(col.value) {
			out = append(out, Advisory{Field: col.field, Message: "color should be #RRGGBB"})
		}
	}
	if v.MaxRedemptions < 1 {
		out = append(out, Advisory{Field: "max_redemptions", Message: "max redemptions should be at least 1"})
	}
	if v.ValidityDays < 1 {
		out = append(out, Advisory{Field: "validity_days", Message: "validity period should be at least 1 day"})
	}
	if v.DiscountValue < 0 {
		out = append(out, Advisory{Field: "discount_value", Message: "discount should not be negative"})
	} else if v.DiscountType == DiscountPercentage && v.DiscountValue > 100 {
		out = append(out, Advisory{Field: "discount_value", Message: "percentage discount should not exceed 100"})
	}
	return out
}
