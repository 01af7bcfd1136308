package studio

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rewardscraft/studio/internal/auth"
	"github.com/rewardscraft/studio/internal/customizer"
	"github.com/rewardscraft/studio/internal/logo"
	"github.com/rewardscraft/studio/internal/middleware"
	"github.com/rewardscraft/studio/internal/models"
	"github.com/rewardscraft/studio/pkg/response"
)

// CreateSessionResponse is returned by POST /api/sessions.
type CreateSessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	State     Snapshot  `json:"state"`
}

// Handler handles the studio JSON API.
type Handler struct {
	registry     *Registry
	tokens       *auth.TokenService
	logger       *zap.Logger
	secureCookie bool
	saveTimeout  time.Duration
}

// NewHandler creates a studio handler.
func NewHandler(registry *Registry, tokens *auth.TokenService, secureCookie bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry:     registry,
		tokens:       tokens,
		logger:       logger,
		secureCookie: secureCookie,
		saveTimeout:  5 * time.Second,
	}
}

// CreateSession handles POST /api/sessions.
func (h *Handler) CreateSession(c *gin.Context) {
	s, token, err := h.start(c)
	if err != nil {
		response.Internal(c, "failed to start session")
		return
	}
	response.Created(c, CreateSessionResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokens.TTL()).UTC(),
		State:     s.Snapshot(),
	})
}

// start creates a session, issues its token and sets the session cookie.
func (h *Handler) start(c *gin.Context) (*Session, string, error) {
	s := h.registry.Create()
	token, err := h.tokens.Issue(s.ID())
	if err != nil {
		h.logger.Error("issue session token", zap.Error(err))
		_ = h.registry.Close(c.Request.Context(), s.ID())
		return nil, "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.tokens.TTL().Seconds()), "/", "", h.secureCookie, true)
	return s, token, nil
}

// Get handles GET /api/sessions/current.
func (h *Handler) Get(c *gin.Context) {
	response.OK(c, sessionFrom(c).Snapshot())
}

// Delete handles DELETE /api/sessions/current.
func (h *Handler) Delete(c *gin.Context) {
	s := sessionFrom(c)
	if err := h.registry.Close(c.Request.Context(), s.ID()); err != nil && !errors.Is(err, ErrSessionNotFound) {
		h.logger.Error("close session", zap.String("session_id", s.ID().String()), zap.Error(err))
		response.Internal(c, "failed to release session resources")
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	response.NoContent(c)
}

// UpdateCampaign handles PATCH /api/sessions/current/campaign.
func (h *Handler) UpdateCampaign(c *gin.Context) {
	var cmd models.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := models.DecodeCampaignUpdate(cmd)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.reply(c, func() (Snapshot, error) { return sessionFrom(c).UpdateCampaign(u) })
}

// UpdateVoucher handles PATCH /api/sessions/current/voucher. The body is one command or an array.
func (h *Handler) UpdateVoucher(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	updates, err := DecodeVoucherCommands(json.RawMessage(raw))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.reply(c, func() (Snapshot, error) { return sessionFrom(c).UpdateVoucher(updates...) })
}

// ApplyField handles POST /api/sessions/current/voucher/fields.
func (h *Handler) ApplyField(c *gin.Context) {
	var in FieldInput
	if err := c.ShouldBind(&in); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.reply(c, func() (Snapshot, error) { return sessionFrom(c).ApplyField(in) })
}

// ApplyPreset handles POST /api/sessions/current/voucher/preset.
func (h *Handler) ApplyPreset(c *gin.Context) {
	var in PresetInput
	if err := c.ShouldBind(&in); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.reply(c, func() (Snapshot, error) { return sessionFrom(c).ApplyPreset(in.Name) })
}

// SetTab handles PUT /api/sessions/current/tab.
func (h *Handler) SetTab(c *gin.Context) {
	var in TabInput
	if err := c.ShouldBind(&in); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tab, err := ParseTab(in.Tab)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.reply(c, func() (Snapshot, error) { return sessionFrom(c).SetTab(tab) })
}

// UploadLogoResponse reports whether the offered file became the logo.
type UploadLogoResponse struct {
	Accepted bool     `json:"accepted"`
	State    Snapshot `json:"state"`
}

// UploadLogo handles POST /api/sessions/current/logo (multipart, field "file").
// Only the first file counts; a non-image leaves the logo unchanged and still answers 200.
func (h *Handler) UploadLogo(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "multipart form required")
		return
	}
	source := SourcePicker
	if UploadSource(c.PostForm("source")) == SourceDrop {
		source = SourceDrop
	}
	accepted, snap, err := sessionFrom(c).UploadLogo(c.Request.Context(), source, candidates(form.File["file"]))
	if errors.Is(err, ErrSessionClosed) {
		response.NotFound(c, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("upload logo", zap.Error(err))
		response.Internal(c, "failed to store logo")
		return
	}
	response.OK(c, UploadLogoResponse{Accepted: accepted, State: snap})
}

func candidates(files []*multipart.FileHeader) []logo.Candidate {
	out := make([]logo.Candidate, 0, len(files))
	for _, fh := range files {
		out = append(out, logo.FromMultipart(fh))
	}
	return out
}

// RemoveLogo handles DELETE /api/sessions/current/logo.
func (h *Handler) RemoveLogo(c *gin.Context) {
	snap, err := sessionFrom(c).RemoveLogo(c.Request.Context())
	if errors.Is(err, ErrSessionClosed) {
		response.NotFound(c, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("remove logo", zap.Error(err))
		response.Internal(c, "failed to release logo")
		return
	}
	response.OK(c, snap)
}

// Save handles POST /api/sessions/current/save. Saving always succeeds from the caller's view.
func (h *Handler) Save(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.saveTimeout)
	defer cancel()
	h.reply(c, func() (Snapshot, error) { return sessionFrom(c).Save(ctx) })
}

// reply runs a transition and writes its snapshot. A closed session answers 404, any
// other error is a rejected command.
func (h *Handler) reply(c *gin.Context, transition func() (Snapshot, error)) {
	snap, err := transition()
	switch {
	case errors.Is(err, ErrSessionClosed):
		response.NotFound(c, "session not found")
	case err != nil:
		response.BadRequest(c, err.Error())
	default:
		response.OK(c, snap)
	}
}

// Preview handles GET /api/sessions/current/preview and returns the card as an HTML fragment.
func (h *Handler) Preview(c *gin.Context) {
	html, err := RenderPreview(sessionFrom(c).Snapshot())
	if err != nil {
		h.logger.Error("render preview", zap.Error(err))
		response.Internal(c, "failed to render preview")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Presets handles GET /api/presets.
func (h *Handler) Presets(c *gin.Context) {
	response.OK(c, customizer.Presets())
}
