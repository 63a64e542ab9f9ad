package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings control one export run. Zero values are not usable directly,
// use Defaults().
type Settings struct {
	// Number of precision bits discarded when computing the shared export
	// scale. The headroom divisor is 2^DiscardBits; it keeps posed bones
	// from overflowing int16 range when they extend past the rest mesh.
	DiscardBits int `yaml:"discard_bits" json:"discard_bits"`

	// Emit per-triangle diffuse color for faces with an assigned material.
	ExportColor bool `yaml:"export_color" json:"export_color"`

	// Object name overrides. Empty selects the first mesh/armature in
	// provider enumeration order.
	Mesh     string `yaml:"mesh" json:"mesh"`
	Armature string `yaml:"armature" json:"armature"`

	// Output text encoding name, see ListEncodings().
	Encoding string `yaml:"encoding" json:"encoding"`
}

func Defaults() Settings {
	return Settings{
		DiscardBits: 2,
		ExportColor: false,
	}
}

var currentSettings = Defaults()

func GetSettings() Settings {
	return currentSettings
}

func SetSettings(s Settings) {
	currentSettings = s
}

// LoadSettings merges a yaml config file over the current settings.
func LoadSettings(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Cannot read config file %q", path)
	}

	s := currentSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return errors.Wrapf(err, "Cannot parse config file %q", path)
	}

	if err := Validate(s); err != nil {
		return err
	}
	if s.Encoding != "" {
		if err := SetEncoding(s.Encoding); err != nil {
			return err
		}
	}

	currentSettings = s
	return nil
}

// Validate checks settings ranges before they are applied.
func Validate(s Settings) error {
	if s.DiscardBits < 0 || s.DiscardBits > 14 {
		return errors.Errorf("discard_bits %v out of range [0,14]", s.DiscardBits)
	}
	return nil
}
