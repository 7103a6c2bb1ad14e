package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings bundles both configuration halves for file round-trips.
type Settings struct {
	Replay    Replay    `yaml:"replay"`
	Animation Animation `yaml:"animation"`
}

// WriteSettings writes settings to a YAML file.
func WriteSettings(s *Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSettings reads settings from a YAML file and validates them.
func ReadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := Settings{Replay: DefaultReplay(), Animation: DefaultAnimation()}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Replay.Validate(); err != nil {
		return nil, err
	}
	if err := s.Animation.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Preset resolves a named animation-settings bundle for the CLI.
func Preset(name string) (Animation, error) {
	switch name {
	case "", "default":
		return DefaultAnimation(), nil
	case "fast":
		return Animation{
			PenStroke:     Category{Duration: 300, Delay: 50, Easing: "ease-out"},
			Shape:         Category{Duration: 200, Delay: 60, Easing: "linear"},
			Library:       Category{Duration: 250, Delay: 80, Easing: "linear"},
			TrueSpeedRate: 600,
			UpdateSteps:   12,
		}, nil
	case "deliberate":
		return Animation{
			PenStroke:     Category{Duration: 1600, Delay: 400, Easing: "ease-in-out"},
			Shape:         Category{Duration: 1200, Delay: 500, Easing: "ease-in-out"},
			Library:       Category{Duration: 1400, Delay: 600, Easing: "ease-in"},
			TrueSpeed:     true,
			TrueSpeedRate: 150,
			UpdateSteps:   30,
		}, nil
	}
	return Animation{}, fmt.Errorf("unknown preset %q", name)
}
