// Package preview derives the rendered voucher from a voucher configuration.
// Everything here is a pure function of its inputs.
package preview

import (
	"fmt"
	"html/template"
	"strconv"

	"github.com/rewardscraft/studio/internal/models"
)

// Input is everything the preview depends on.
type Input struct {
	Voucher      models.VoucherConfig
	LogoURL      string
	CampaignName string
}

// Styles holds the inline CSS for each part of the card. Only validated #RRGGBB
// colors are ever interpolated, so the values are safe to mark as template.CSS.
type Styles struct {
	Card             template.CSS `json:"card"`
	Pattern          template.CSS `json:"pattern"`
	Body             template.CSS `json:"body"`
	LogoPlaceholder  template.CSS `json:"logo_placeholder"`
	Icon             template.CSS `json:"icon"`
	Text             template.CSS `json:"text"`
	Badge            template.CSS `json:"badge"`
	Footer           template.CSS `json:"footer"`
	CircleTopRight   template.CSS `json:"circle_top_right"`
	CircleBottomLeft template.CSS `json:"circle_bottom_left"`
	PrimarySwatch    template.CSS `json:"primary_swatch"`
	SecondarySwatch  template.CSS `json:"secondary_swatch"`
}

// Summary is the configuration summary shown under the card.
type Summary struct {
	Discount       string `json:"discount"`
	Validity       string `json:"validity"`
	MaxUses        string `json:"max_uses"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// View is the derived voucher preview.
type View struct {
	Title         string  `json:"title"`
	CampaignName  string  `json:"campaign_name,omitempty"`
	Description   string  `json:"description"`
	Terms         string  `json:"terms,omitempty"`
	DiscountLabel string  `json:"discount_label"`
	LogoURL       string  `json:"logo_url,omitempty"`
	ValidityText  string  `json:"validity_text"`
	MaxText       string  `json:"max_text"`
	Styles        Styles  `json:"styles"`
	Summary       Summary `json:"summary"`
}

// HasLogo reports whether the card shows the uploaded logo instead of the placeholder icon.
func (v View) HasLogo() bool { return v.LogoURL != "" }

// HasTerms reports whether the terms block is shown.
func (v View) HasTerms() bool { return v.Terms != "" }

// Build derives the preview view from its inputs.
func Build(in Input) View {
	vc := in.Voucher
	primary := cssColor(vc.PrimaryColor, models.DefaultPrimaryColor)
	secondary := cssColor(vc.SecondaryColor, models.DefaultSecondaryColor)
	text := cssColor(vc.TextColor, models.DefaultTextColor)

	title := vc.Title
	if title == "" {
		title = models.DefaultVoucherTitle
	}
	desc := vc.Description
	if desc == "" {
		desc = models.DefaultVoucherDescription
	}

	return View{
		Title:         title,
		CampaignName:  in.CampaignName,
		Description:   desc,
		Terms:         vc.TermsAndConditions,
		DiscountLabel: DiscountLabel(vc),
		LogoURL:       in.LogoURL,
		ValidityText:  fmt.Sprintf("Valid %d days", vc.ValidityDays),
		MaxText:       fmt.Sprintf("Max %d", vc.MaxRedemptions),
		Styles: Styles{
			Card: css("position: relative; overflow: hidden; background: linear-gradient(135deg, %s 0%%, %s 100%%); color: %s;",
				primary, secondary, text),
			Pattern: css("position: absolute; inset: 0; opacity: %s; background-image: radial-gradient(circle at 20%% 50%%, %s 0%%, transparent 50%%), radial-gradient(circle at 80%% 50%%, %s 0%%, transparent 50%%);",
				patternOpacity, primary, secondary),
			Body:             template.CSS("position: relative;"),
			LogoPlaceholder:  css("background-color: %s20;", primary),
			Icon:             css("color: %s;", primary),
			Text:             css("color: %s;", text),
			Badge:            css("background-color: %s;", primary),
			Footer:           css("border-color: %s20; color: %s80;", text, text),
			CircleTopRight:   circle("top: 0; right: 0; transform: translate(50%, -50%);", 80, secondary),
			CircleBottomLeft: circle("bottom: 0; left: 0; transform: translate(-50%, 50%);", 64, primary),
			PrimarySwatch:    css("background-color: %s;", primary),
			SecondarySwatch:  css("background-color: %s;", secondary),
		},
		Summary: Summary{
			Discount:       discountSummary(vc),
			Validity:       fmt.Sprintf("%d days", vc.ValidityDays),
			MaxUses:        strconv.Itoa(vc.MaxRedemptions),
			PrimaryColor:   vc.PrimaryColor,
			SecondaryColor: vc.SecondaryColor,
		},
	}
}

// DiscountLabel formats the badge text: "15% OFF" or "$25 OFF".
func DiscountLabel(v models.VoucherConfig) string {
	if v.DiscountType == models.DiscountPercentage {
		return FormatNumber(v.DiscountValue) + "% OFF"
	}
	return "$" + FormatNumber(v.DiscountValue) + " OFF"
}

func discountSummary(v models.VoucherConfig) string {
	if v.DiscountType == models.DiscountPercentage {
		return FormatNumber(v.DiscountValue) + "%"
	}
	return "$" + FormatNumber(v.DiscountValue)
}

// FormatNumber prints f the shortest way that round-trips, without a trailing ".0".
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func cssColor(c, fallback string) string {
	if models.IsHexColor(c) {
		return c
	}
	return fallback
}

// Opacity of the decorative layers.
const (
	patternOpacity = "0.1"
	circleOpacity  = "0.05"
)

func circle(placement string, sizePx int, color string) template.CSS {
	return css("position: absolute; %s width: %dpx; height: %dpx; border-radius: 50%%; opacity: %s; pointer-events: none; background-color: %s;",
		placement, sizePx, sizePx, circleOpacity, color)
}

func css(format string, args ...interface{}) template.CSS {
	return template.CSS(fmt.Sprintf(format, args...))
}
