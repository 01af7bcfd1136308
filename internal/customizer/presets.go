package customizer

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rewardscraft/studio/internal/models"
)

//go:embed presets.yaml
var presetsYAML []byte

// ErrUnknownPreset is returned when a preset name does not match the table.
var ErrUnknownPreset = errors.New("unknown color preset")

// Preset is a named primary/secondary color pair.
type Preset struct {
	Name      string `yaml:"name" json:"name"`
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
}

// Updates returns the two edits selecting this preset produces.
func (p Preset) Updates() []models.VoucherUpdate {
	return []models.VoucherUpdate{
		models.SetPrimaryColor{Value: p.Primary},
		models.SetSecondaryColor{Value: p.Secondary},
	}
}

var presets = mustLoadPresets(presetsYAML)

func mustLoadPresets(raw []byte) []Preset {
	list, err := loadPresets(raw)
	if err != nil {
		panic(err)
	}
	return list
}

func loadPresets(raw []byte) ([]Preset, error) {
	var doc struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for _, p := range doc.Presets {
		if p.Name == "" || !models.IsHexColor(p.Primary) || !models.IsHexColor(p.Secondary) {
			return nil, fmt.Errorf("preset %q: colors must be #RRGGBB", p.Name)
		}
	}
	return doc.Presets, nil
}

// Presets returns the fixed preset list in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByName looks a preset up by its display name, ignoring case.
func PresetByName(name string) (Preset, error) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%q: %w", name, ErrUnknownPreset)
}
