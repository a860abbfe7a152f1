package config

import (
	"fmt"
	"os"

	"github.com/Starland9/sand-simulation/particle"
	"gopkg.in/yaml.v3"
)

// MaterialPreset is a named, complete material table that can be saved to
// disk and loaded back without loss.
type MaterialPreset struct {
	Name      string                      `yaml:"name"`
	Materials map[string]particle.Profile `yaml:"materials"`
}

// NewMaterialPreset captures a full profile table under a name.
func NewMaterialPreset(name string, ps particle.Profiles) MaterialPreset {
	mats := make(map[string]particle.Profile, particle.TypeCount)
	for i := 0; i < particle.TypeCount; i++ {
		mats[particle.Type(i).String()] = ps[i]
	}
	return MaterialPreset{Name: name, Materials: mats}
}

// Profiles reconstructs the profile table. Materials missing from the
// preset keep their built-in defaults.
func (mp MaterialPreset) Profiles() (particle.Profiles, error) {
	ps := particle.DefaultProfiles()
	for name, prof := range mp.Materials {
		t, err := particle.TypeFromName(name)
		if err != nil {
			return ps, fmt.Errorf("preset %q: %w", mp.Name, err)
		}
		ps[t] = prof
	}
	if err := ps.Validate(); err != nil {
		return ps, fmt.Errorf("preset %q: %w", mp.Name, err)
	}
	return ps, nil
}

// SaveMaterialPreset writes a preset to a YAML file.
func SaveMaterialPreset(path string, mp MaterialPreset) error {
	data, err := yaml.Marshal(mp)
	if err != nil {
		return fmt.Errorf("marshaling preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing preset file: %w", err)
	}
	return nil
}

// LoadMaterialPreset reads a preset from a YAML file.
func LoadMaterialPreset(path string) (MaterialPreset, error) {
	var mp MaterialPreset
	data, err := os.ReadFile(path)
	if err != nil {
		return mp, fmt.Errorf("reading preset file: %w", err)
	}
	if err := yaml.Unmarshal(data, &mp); err != nil {
		return mp, fmt.Errorf("parsing preset file: %w", err)
	}
	return mp, nil
}
