package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewardscraft/studio/internal/metrics"
	"github.com/rewardscraft/studio/internal/models"
)

// SavedChannel is the Redis channel saved campaigns are published on.
const SavedChannel = "studio:campaigns:saved"

// SavedCampaign is the record emitted when the user saves.
type SavedCampaign struct {
	SessionID uuid.UUID             `json:"session_id"`
	SavedAt   time.Time             `json:"saved_at"`
	Campaign  models.CampaignConfig `json:"campaign"`
}

// Saver receives saved campaigns.
type Saver interface {
	SaveCampaign(ctx context.Context, saved SavedCampaign) error
}

// LogSaver writes the saved campaign to the structured log.
type LogSaver struct {
	logger *zap.Logger
}

func NewLogSaver(logger *zap.Logger) *LogSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSaver{logger: logger}
}

func (s *LogSaver) SaveCampaign(_ context.Context, saved SavedCampaign) error {
	s.logger.Info("campaign saved",
		zap.String("session_id", saved.SessionID.String()),
		zap.Time("saved_at", saved.SavedAt),
		zap.Any("campaign", saved.Campaign),
	)
	return nil
}

// Publisher publishes a JSON payload on a channel. *redis.Client satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, v interface{}) error
}

// PublishSaver fans saved campaigns out over pub/sub for downstream consumers.
type PublishSaver struct {
	pub     Publisher
	channel string
	timeout time.Duration
}

func NewPublishSaver(pub Publisher, channel string) *PublishSaver {
	if channel == "" {
		channel = SavedChannel
	}
	return &PublishSaver{pub: pub, channel: channel, timeout: 2 * time.Second}
}

func (s *PublishSaver) SaveCampaign(ctx context.Context, saved SavedCampaign) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.pub.PublishJSON(ctx, s.channel, saved); err != nil {
		return fmt.Errorf("publish saved campaign: %w", err)
	}
	return nil
}

// NamedSaver labels a saver for metrics.
type NamedSaver struct {
	Name  string
	Saver Saver
}

// MultiSaver runs every saver and joins their errors. A failing sink does not stop the rest.
type MultiSaver []NamedSaver

func (m MultiSaver) SaveCampaign(ctx context.Context, saved SavedCampaign) error {
	var errs []error
	for _, ns := range m {
		if err := ns.Saver.SaveCampaign(ctx, saved); err != nil {
			metrics.SaveSinkErrors.WithLabelValues(ns.Name).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", ns.Name, err))
		}
	}
	return errors.Join(errs...)
}
