package studio

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rewardscraft/studio/internal/customizer"
	"github.com/rewardscraft/studio/internal/middleware"
	"github.com/rewardscraft/studio/internal/models"
	"github.com/rewardscraft/studio/internal/preview"
)

//go:embed templates/*.html
var pageFS embed.FS

var pageTmpl = template.Must(template.New("studio").Funcs(template.FuncMap{
	"num": preview.FormatNumber,
	"kb":  formatKB,
}).ParseFS(pageFS, "templates/*.html"))

// designControls are the design form fields, in form order.
var designControls = []string{
	customizer.ControlPrimaryColor,
	customizer.ControlSecondaryColor,
	customizer.ControlTextColor,
	customizer.ControlTitle,
	customizer.ControlDescription,
	customizer.ControlTerms,
	customizer.ControlDiscountType,
	customizer.ControlDiscountValue,
	customizer.ControlValidityDays,
	customizer.ControlMaxRedemptions,
}

// formatKB prints a byte count in KB with one decimal.
func formatKB(size int64) string {
	return strconv.FormatFloat(float64(size)/1024, 'f', 1, 64)
}

type tabLink struct {
	Tab    Tab
	Label  string
	Active bool
}

type pageView struct {
	State       Snapshot
	Tabs        []tabLink
	PreviewHTML template.HTML
	Presets     []customizer.Preset
	Discount    customizer.NumberInput
	Validity    customizer.NumberInput
	MaxUses     customizer.NumberInput
	Percentage  bool
	Saved       bool
	Rejected    bool
	Error       string
}

var tabLabels = map[Tab]string{
	TabCampaign: "Campaign",
	TabLogo:     "Logo",
	TabDesign:   "Design",
	TabPreview:  "Preview",
}

// Page serves the server-rendered studio. Forms post back and redirect to GET /.
type Page struct {
	h *Handler
}

// NewPage creates the page handlers on top of the API handler.
func NewPage(h *Handler) *Page {
	return &Page{h: h}
}

func (p *Page) resolve(c *gin.Context) (*Session, bool) {
	token, err := c.Cookie(middleware.SessionCookie)
	if err != nil || token == "" {
		return nil, false
	}
	claims, err := p.h.tokens.Validate(token)
	if err != nil {
		return nil, false
	}
	s, err := p.h.registry.Get(claims.SessionID)
	if err != nil {
		return nil, false
	}
	return s, true
}

// Show handles GET /. A missing or stale cookie starts a new session.
func (p *Page) Show(c *gin.Context) {
	s, ok := p.resolve(c)
	if !ok {
		var err error
		if s, _, err = p.h.start(c); err != nil {
			c.String(http.StatusInternalServerError, "failed to start session")
			return
		}
	}
	snap := s.Snapshot()
	html, err := RenderPreview(snap)
	if err != nil {
		p.h.logger.Error("render preview", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to render preview")
		return
	}

	v := pageView{
		State:       snap,
		PreviewHTML: html,
		Presets:     customizer.Presets(),
		Discount:    customizer.DiscountInput(snap.Campaign.Voucher),
		Validity:    customizer.CountInput("30"),
		MaxUses:     customizer.CountInput("100"),
		Percentage:  snap.Campaign.Voucher.DiscountType == models.DiscountPercentage,
		Saved:       c.Query("saved") == "1",
		Rejected:    c.Query("logo") == "rejected",
		Error:       c.Query("error"),
	}
	for _, t := range Tabs {
		v.Tabs = append(v.Tabs, tabLink{Tab: t, Label: tabLabels[t], Active: t == snap.Tab})
	}

	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "studio", v); err != nil {
		p.h.logger.Error("render studio page", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (p *Page) withSession(fn func(c *gin.Context, s *Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := p.resolve(c)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		fn(c, s)
	}
}

// after redirects once a transition finished. A session closed underneath the request
// sends the browser back to / where a fresh one starts.
func after(c *gin.Context, err error, query string) {
	if errors.Is(err, ErrSessionClosed) {
		back(c, "")
		return
	}
	back(c, query)
}

func back(c *gin.Context, query string) {
	target := "/"
	if query != "" {
		target += "?" + query
	}
	c.Redirect(http.StatusSeeOther, target)
}

// Campaign handles POST /studio/campaign. Every posted field lands in one transition;
// the redemption cap goes through the customizer like the design controls.
func (p *Page) Campaign() gin.HandlerFunc {
	return p.withSession(func(c *gin.Context, s *Session) {
		var updates []models.CampaignUpdate
		if v, ok := c.GetPostForm("name"); ok {
			updates = append(updates, models.SetName{Value: v})
		}
		if v, ok := c.GetPostForm("description"); ok {
			updates = append(updates, models.SetDescription{Value: v})
		}
		if v, ok := c.GetPostForm("start_date"); ok {
			updates = append(updates, models.SetStartDate{Value: v})
		}
		if v, ok := c.GetPostForm("end_date"); ok {
			updates = append(updates, models.SetEndDate{Value: v})
		}
		var voucher []models.VoucherUpdate
		if v, ok := c.GetPostForm(customizer.ControlMaxRedemptions); ok {
			u, err := customizer.Field(customizer.ControlMaxRedemptions, v)
			if err != nil {
				back(c, "error=invalid+"+customizer.ControlMaxRedemptions)
				return
			}
			voucher = append(voucher, u)
		}
		if len(updates) == 0 && len(voucher) == 0 {
			back(c, "")
			return
		}
		_, err := s.Edit(updates, voucher)
		after(c, err, "")
	})
}

// Design handles POST /studio/design. Each posted control goes through the customizer.
func (p *Page) Design() gin.HandlerFunc {
	return p.withSession(func(c *gin.Context, s *Session) {
		var updates []models.VoucherUpdate
		for _, control := range designControls {
			raw, ok := c.GetPostForm(control)
			if !ok {
				continue
			}
			u, err := customizer.Field(control, raw)
			if err != nil {
				back(c, "error=invalid+"+control)
				return
			}
			updates = append(updates, u)
		}
		if len(updates) == 0 {
			back(c, "")
			return
		}
		_, err := s.UpdateVoucher(updates...)
		after(c, err, "")
	})
}

// Preset handles POST /studio/preset.
func (p *Page) Preset() gin.HandlerFunc {
	return p.withSession(func(c *gin.Context, s *Session) {
		_, err := s.ApplyPreset(c.PostForm("name"))
		if errors.Is(err, customizer.ErrUnknownPreset) {
			back(c, "error=unknown+preset")
			return
		}
		after(c, err, "")
	})
}

// Tab handles POST /studio/tab.
func (p *Page) Tab() gin.HandlerFunc {
	return p.withSession(func(c *gin.Context, s *Session) {
		tab, err := ParseTab(c.PostForm("tab"))
		if err != nil {
			back(c, "")
			return
		}
		_, err = s.SetTab(tab)
		after(c, err, "")
	})
}

// Logo handles POST /studio/logo.
func (p *Page) Logo() gin.HandlerFunc {
	return p.withSession(func(c *gin.Context, s *Session) {
		form, err := c.MultipartForm()
		if err != nil {
			back(c, "")
			return
		}
		files := form.File["file"]
		accepted, _, err := s.UploadLogo(c.Request.Context(), SourcePicker, candidates(files))
		switch {
		case errors.Is(err, ErrSessionClosed):
			after(c, err, "")
		case err != nil:
			p.h.logger.Error("upload logo", zap.Error(err))
			back(c, "error=logo+upload+failed")
		case !accepted && len(files) > 0:
			back(c, "logo=rejected")
		default:
			back(c, "")
		}
	})
}

// RemoveLogo handles POST /studio/logo/remove.
func (p *Page) RemoveLogo() gin.HandlerFunc {
	return p.withSession(func(c *gin.Context, s *Session) {
		_, err := s.RemoveLogo(c.Request.Context())
		if err != nil && !errors.Is(err, ErrSessionClosed) {
			p.h.logger.Error("remove logo", zap.Error(err))
		}
		after(c, err, "")
	})
}

// Save handles POST /studio/save.
func (p *Page) Save() gin.HandlerFunc {
	return p.withSession(func(c *gin.Context, s *Session) {
		_, err := s.Save(c.Request.Context())
		after(c, err, "saved=1")
	})
}
