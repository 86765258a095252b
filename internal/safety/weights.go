package safety

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Weights controls the linear combination of the four score components.
// Positive weights reward proximity/density, negative weights penalize it.
type Weights struct {
	Streetlight float64 `yaml:"streetlight"`
	Police      float64 `yaml:"police"`
	Station     float64 `yaml:"station"`
	Nightlife   float64 `yaml:"nightlife"`
}

// DefaultWeights returns the standard night-walking profile: police presence
// counts most, nightlife density slightly reduces safety.
func DefaultWeights() Weights {
	return Weights{
		Streetlight: 1.0,
		Police:      1.5,
		Station:     0.5,
		Nightlife:   -0.7,
	}
}

// LoadWeightsFile reads a weights profile from a YAML file. Fields omitted
// from the file keep their default value.
func LoadWeightsFile(path string) (Weights, error) {
	w := DefaultWeights()

	data, err := os.ReadFile(path)
	if err != nil {
		return w, eris.Wrapf(err, "safety: read weights file %s", path)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, eris.Wrapf(err, "safety: parse weights file %s", path)
	}
	return w, nil
}
