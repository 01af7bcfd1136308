package studio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/rewardscraft/studio/internal/customizer"
	"github.com/rewardscraft/studio/internal/metrics"
	"github.com/rewardscraft/studio/internal/models"
	"github.com/rewardscraft/studio/internal/preview"
)

// FieldInput is a raw design form control value.
type FieldInput struct {
	Control string `json:"control" form:"control" binding:"required"`
	Value   string `json:"value" form:"value"`
}

// PresetInput selects a color preset by name.
type PresetInput struct {
	Name string `json:"name" form:"name" binding:"required"`
}

// TabInput switches the visible tab.
type TabInput struct {
	Tab string `json:"tab" form:"tab" binding:"required"`
}

// DecodeVoucherCommands accepts one command object or an array of them.
func DecodeVoucherCommands(raw json.RawMessage) ([]models.VoucherUpdate, error) {
	raw = bytes.TrimSpace(raw)
	var cmds []models.Command
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &cmds); err != nil {
			return nil, fmt.Errorf("decode voucher commands: %w", err)
		}
	} else {
		var cmd models.Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return nil, fmt.Errorf("decode voucher command: %w", err)
		}
		cmds = []models.Command{cmd}
	}
	if len(cmds) == 0 {
		return nil, fmt.Errorf("no voucher commands: %w", models.ErrInvalidValue)
	}
	updates := make([]models.VoucherUpdate, 0, len(cmds))
	for _, cmd := range cmds {
		u, err := models.DecodeVoucherUpdate(cmd)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// DecodeCampaignCommand decodes a single campaign command object.
func DecodeCampaignCommand(raw json.RawMessage) (models.CampaignUpdate, error) {
	var cmd models.Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return nil, fmt.Errorf("decode campaign command: %w", err)
	}
	return models.DecodeCampaignUpdate(cmd)
}

// ApplyField routes a raw design control value through the customizer.
func (s *Session) ApplyField(in FieldInput) (Snapshot, error) {
	u, err := customizer.Field(in.Control, in.Value)
	if err != nil {
		return Snapshot{}, err
	}
	return s.UpdateVoucher(u)
}

// RenderPreview renders the voucher card fragment for a snapshot.
func RenderPreview(snap Snapshot) (template.HTML, error) {
	start := time.Now()
	html, err := preview.HTML(snap.Preview)
	metrics.PreviewRenderDuration.Observe(time.Since(start).Seconds())
	return html, err
}
