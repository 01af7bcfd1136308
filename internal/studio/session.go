// Package studio owns campaign drafts: one Session per browser session holds the
// CampaignConfig, the selected tab and the live logo handle, and applies every edit
// as a single serialized transition.
package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewardscraft/studio/internal/customizer"
	"github.com/rewardscraft/studio/internal/logo"
	"github.com/rewardscraft/studio/internal/metrics"
	"github.com/rewardscraft/studio/internal/models"
	"github.com/rewardscraft/studio/internal/preview"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrInvalidTab      = errors.New("invalid tab")
)

// Tab is the wizard view currently shown. It never affects the campaign itself.
type Tab string

const (
	TabCampaign Tab = "campaign"
	TabLogo     Tab = "logo"
	TabDesign   Tab = "design"
	TabPreview  Tab = "preview"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabCampaign, TabLogo, TabDesign, TabPreview}

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidTab)
}

// UploadSource says how a logo file was offered.
type UploadSource string

const (
	SourcePicker UploadSource = "picker"
	SourceDrop   UploadSource = "drop"
)

// LogoState is the drop zone state exposed to clients.
type LogoState struct {
	DragHover        bool  `json:"drag_hover"`
	PickerGeneration int   `json:"picker_generation"`
	AdvisoryMaxBytes int64 `json:"advisory_max_bytes"`
	AdvisoryMinPx    int   `json:"advisory_min_px"`
}

// Snapshot is an immutable copy of a session's state after some transition.
type Snapshot struct {
	SessionID  uuid.UUID             `json:"session_id"`
	Version    uint64                `json:"version"`
	Tab        Tab                   `json:"tab"`
	Campaign   models.CampaignConfig `json:"campaign"`
	Logo       LogoState             `json:"logo"`
	Advisories []models.Advisory     `json:"advisories"`
	Preview    preview.View          `json:"preview"`
}

// Session is one campaign draft. All methods are safe for concurrent use; transitions are serialized.
type Session struct {
	id     uuid.UUID
	logger *zap.Logger
	saver  Saver
	notify func(Snapshot)
	now    func() time.Time

	mu         sync.Mutex
	campaign   models.CampaignConfig
	tab        Tab
	logo       *logo.Handle
	uploader   *logo.Uploader
	version    uint64
	lastActive time.Time
	closed     bool
}

func newSession(id uuid.UUID, store logo.BlobStore, saver Saver, notify func(Snapshot), now func() time.Time, logger *zap.Logger) *Session {
	s := &Session{
		id:         id,
		logger:     logger.With(zap.String("session_id", id.String())),
		saver:      saver,
		notify:     notify,
		now:        now,
		campaign:   models.NewCampaignConfig(),
		tab:        TabCampaign,
		lastActive: now(),
	}
	s.uploader = logo.NewUploader(store, id.String(), s.setLogoLocked, s.logger)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// LastActive returns the time of the last transition or read.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()
	return s.snapshotLocked()
}

// UpdateCampaign merges one top-level field.
func (s *Session) UpdateCampaign(u models.CampaignUpdate) (Snapshot, error) {
	return s.Edit([]models.CampaignUpdate{u}, nil)
}

// UpdateVoucher merges voucher fields. All updates land in one transition.
func (s *Session) UpdateVoucher(updates ...models.VoucherUpdate) (Snapshot, error) {
	return s.Edit(nil, updates)
}

// Edit applies campaign and voucher edits from one user action as a single transition.
func (s *Session) Edit(campaign []models.CampaignUpdate, voucher []models.VoucherUpdate) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrSessionClosed
	}
	next := s.campaign
	for _, u := range campaign {
		next = next.Apply(u)
		metrics.RecordFieldUpdate("campaign", u.Field())
	}
	if len(voucher) > 0 {
		next = next.ApplyVoucher(voucher...)
		for _, u := range voucher {
			metrics.RecordFieldUpdate("voucher", u.Field())
		}
	}
	s.campaign = next
	return s.commitLocked(), nil
}

// ApplyPreset sets both preset colors in one transition.
func (s *Session) ApplyPreset(name string) (Snapshot, error) {
	p, err := customizer.PresetByName(name)
	if err != nil {
		return Snapshot{}, err
	}
	return s.UpdateVoucher(p.Updates()...)
}

// SetTab switches the visible tab. The campaign is untouched.
func (s *Session) SetTab(t Tab) (Snapshot, error) {
	return s.transition(func() { s.tab = t })
}

// DragOver marks the logo drop zone as hovered.
func (s *Session) DragOver() (Snapshot, error) {
	return s.transition(s.uploader.DragOver)
}

// DragLeave clears the drop zone hover flag.
func (s *Session) DragLeave() (Snapshot, error) {
	return s.transition(s.uploader.DragLeave)
}

// UploadLogo offers files through the picker or a drop. Only the first file is considered and
// non-images are ignored; accepted reports whether the logo changed.
func (s *Session) UploadLogo(ctx context.Context, source UploadSource, files []logo.Candidate) (bool, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, Snapshot{}, ErrSessionClosed
	}
	var (
		accepted bool
		err      error
	)
	if source == SourceDrop {
		accepted, err = s.uploader.Drop(ctx, files)
	} else {
		accepted, err = s.uploader.FileInputChange(ctx, files)
	}
	switch {
	case err != nil:
		metrics.RecordLogoUpload("error")
		return false, s.snapshotLocked(), err
	case accepted:
		metrics.RecordLogoUpload("accepted")
	case len(files) > 0:
		metrics.RecordLogoUpload("rejected")
	}
	return accepted, s.commitLocked(), nil
}

// RemoveLogo releases the display reference and clears the logo.
func (s *Session) RemoveLogo(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrSessionClosed
	}
	err := s.uploader.Remove(ctx, s.logo)
	return s.commitLocked(), err
}

// Save emits the current campaign through the configured savers. Sink errors are logged
// and counted, never returned; the only error is ErrSessionClosed.
func (s *Session) Save(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	s.lastActive = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.Saves.Inc()
	if s.saver != nil {
		saved := SavedCampaign{SessionID: s.id, SavedAt: s.now().UTC(), Campaign: snap.Campaign}
		if err := s.saver.SaveCampaign(ctx, saved); err != nil {
			s.logger.Warn("save sink failed", zap.Error(err))
		}
	}
	return snap, nil
}

// Close tears the session down and releases its logo.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.logo != nil {
		if err := s.logo.Release(ctx); err != nil {
			return fmt.Errorf("release logo: %w", err)
		}
	}
	return nil
}

// setLogoLocked is the uploader's change callback; it runs with s.mu held.
func (s *Session) setLogoLocked(ctx context.Context, h *logo.Handle) {
	old := s.logo
	s.logo = h
	if h == nil {
		s.campaign = s.campaign.WithLogo(nil, "")
	} else {
		f := h.File()
		s.campaign = s.campaign.WithLogo(&f, h.URL())
	}
	if old != nil && old != h {
		if err := old.Release(ctx); err != nil {
			s.logger.Error("release previous logo", zap.Error(err), zap.String("key", old.Key()))
		}
	}
}

func (s *Session) transition(fn func()) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrSessionClosed
	}
	fn()
	return s.commitLocked(), nil
}

func (s *Session) commitLocked() Snapshot {
	s.version++
	s.lastActive = s.now()
	snap := s.snapshotLocked()
	if s.notify != nil {
		s.notify(snap)
	}
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	c := s.campaign.Clone()
	return Snapshot{
		SessionID: s.id,
		Version:   s.version,
		Tab:       s.tab,
		Campaign:  c,
		Logo: LogoState{
			DragHover:        s.uploader.DragHover(),
			PickerGeneration: s.uploader.PickerGeneration(),
			AdvisoryMaxBytes: logo.AdvisoryMaxBytes,
			AdvisoryMinPx:    logo.AdvisoryMinPixels,
		},
		Advisories: c.Advisories(),
		Preview: preview.Build(preview.Input{
			Voucher:      c.Voucher,
			LogoURL:      c.LogoDisplayURL,
			CampaignName: c.Name,
		}),
	}
}
