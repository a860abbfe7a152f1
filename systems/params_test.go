package systems

import (
	"math"
	"testing"

	"github.com/Starland9/sand-simulation/particle"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults", func(p *Params) {}, false},
		{"nan gravity", func(p *Params) { p.Gravity.Y = float32(math.NaN()) }, true},
		{"negative friction", func(p *Params) { p.Friction = -1 }, true},
		{"zero substeps", func(p *Params) { p.Substeps = 0 }, true},
		{"flat bounds", func(p *Params) { p.BoundsMax.Y = p.BoundsMin.Y }, true},
		{"zero capacity", func(p *Params) { p.MaxParticles = 0 }, true},
		{"recycle policy", func(p *Params) { p.CapacityPolicy = particle.RecycleOldest }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
