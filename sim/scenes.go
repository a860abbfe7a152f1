package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Starland9/sand-simulation/particle"
	"github.com/Starland9/sand-simulation/systems"
)

// sceneBuilder seeds spawn requests for a demo scene. Builders only
// append requests; the engine clears the store and spawns at the frame
// boundary.
type sceneBuilder func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest

// sceneSpacing is the lattice step for stacked shapes, slightly under a
// particle diameter so stacks settle into contact.
const sceneSpacing = 0.9

var sceneOrder = []string{
	"pyramid",
	"floating-cube",
	"bouncing-sphere",
	"rainbow-layers",
	"fountain",
	"explosion",
	"hourglass",
	"wall",
	"double-cube",
	"chaos",
}

var scenes = map[string]sceneBuilder{
	"pyramid": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		return buildPyramid(dst, particle.V3(0, 0.5, 0), 12, particle.Normal)
	},
	"floating-cube": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		return buildCube(dst, particle.V3(0, 25, 0), 8, particle.Heavy)
	},
	"bouncing-sphere": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		return buildSphere(dst, particle.V3(0, 30, 0), 6, particle.Bouncy)
	},
	"rainbow-layers": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		return buildRainbowLayers(dst, particle.V3(0, 0.5, 0), 20, 15)
	},
	"fountain": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		return buildFountain(dst, particle.V3(0, 5, 0), 200, particle.Light, rng)
	},
	"explosion": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		return buildExplosion(dst, particle.V3(0, 20, 0), 300, particle.Explosive, rng)
	},
	"hourglass": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		return buildHourglass(dst, particle.V3(0, 25, 0), 8, particle.Normal)
	},
	"wall": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		return buildWall(dst, particle.V3(-10, 0.5, 0), 20, 15, particle.Heavy)
	},
	"double-cube": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		dst = buildCube(dst, particle.V3(-8, 25, 0), 5, particle.Heavy)
		return buildCube(dst, particle.V3(8, 25, 0), 5, particle.Light)
	},
	"chaos": func(dst []systems.SpawnRequest, rng *rand.Rand) []systems.SpawnRequest {
		dst = buildSphere(dst, particle.V3(-10, 30, -10), 4, particle.Bouncy)
		dst = buildSphere(dst, particle.V3(10, 35, 10), 4, particle.Viscous)
		return buildCube(dst, particle.V3(0, 40, 0), 5, particle.Explosive)
	},
}

// SceneNames lists the available scenes in display order.
func SceneNames() []string {
	out := make([]string, len(sceneOrder))
	copy(out, sceneOrder)
	return out
}

// LoadScene clears the simulation and seeds the named scene at the next
// frame boundary. Unknown names are rejected immediately.
func (e *Engine) LoadScene(name string) error {
	builder, ok := scenes[name]
	if !ok {
		return fmt.Errorf("unknown scene %q", name)
	}
	e.queue(func(e *Engine) {
		e.store.Clear()
		e.store.Compact()
		e.spawnBuf = builder(e.spawnBuf[:0], e.rng)
		e.spawnAll(e.spawnBuf)
	})
	return nil
}

func buildPyramid(dst []systems.SpawnRequest, center particle.Vec3, baseSize int, t particle.Type) []systems.SpawnRequest {
	for level := 0; level < baseSize; level++ {
		size := baseSize - level
		y := center.Y + float32(level)*0.8
		for x := -size / 2; x <= size/2; x++ {
			for z := -size / 2; z <= size/2; z++ {
				dst = append(dst, systems.SpawnRequest{
					Type: t,
					Pos: particle.V3(
						center.X+float32(x)*sceneSpacing,
						y,
						center.Z+float32(z)*sceneSpacing,
					),
				})
			}
		}
	}
	return dst
}

func buildWall(dst []systems.SpawnRequest, start particle.Vec3, width, height int, t particle.Type) []systems.SpawnRequest {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dst = append(dst, systems.SpawnRequest{
				Type: t,
				Pos: particle.V3(
					start.X+float32(x)*sceneSpacing,
					start.Y+float32(y)*sceneSpacing,
					start.Z,
				),
			})
		}
	}
	return dst
}

func buildCube(dst []systems.SpawnRequest, center particle.Vec3, size int, t particle.Type) []systems.SpawnRequest {
	half := size / 2
	for x := -half; x <= half; x++ {
		for y := 0; y < size; y++ {
			for z := -half; z <= half; z++ {
				dst = append(dst, systems.SpawnRequest{
					Type: t,
					Pos: particle.V3(
						center.X+float32(x)*sceneSpacing,
						center.Y+float32(y)*sceneSpacing,
						center.Z+float32(z)*sceneSpacing,
					),
				})
			}
		}
	}
	return dst
}

func buildSphere(dst []systems.SpawnRequest, center particle.Vec3, radius int, t particle.Type) []systems.SpawnRequest {
	for x := -radius; x <= radius; x++ {
		for y := -radius; y <= radius; y++ {
			for z := -radius; z <= radius; z++ {
				if x*x+y*y+z*z > radius*radius {
					continue
				}
				dst = append(dst, systems.SpawnRequest{
					Type: t,
					Pos: particle.V3(
						center.X+float32(x)*sceneSpacing,
						center.Y+float32(radius)+float32(y)*sceneSpacing,
						center.Z+float32(z)*sceneSpacing,
					),
				})
			}
		}
	}
	return dst
}

func buildRainbowLayers(dst []systems.SpawnRequest, center particle.Vec3, width, height int) []systems.SpawnRequest {
	types := []particle.Type{
		particle.Normal, particle.Heavy, particle.Light,
		particle.Bouncy, particle.Viscous, particle.Explosive,
	}
	layerHeight := height / len(types)
	for idx, t := range types {
		yStart := center.Y + float32(idx*layerHeight)*sceneSpacing
		for y := 0; y < layerHeight; y++ {
			for x := -width / 2; x < width/2; x++ {
				dst = append(dst, systems.SpawnRequest{
					Type: t,
					Pos: particle.V3(
						center.X+float32(x)*sceneSpacing,
						yStart+float32(y)*sceneSpacing,
						center.Z,
					),
				})
			}
		}
	}
	return dst
}

func buildFountain(dst []systems.SpawnRequest, center particle.Vec3, count int, t particle.Type, rng *rand.Rand) []systems.SpawnRequest {
	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		speed := 5 + rng.Float64()*10
		dst = append(dst, systems.SpawnRequest{
			Type: t,
			Pos:  center,
			Vel: particle.V3(
				float32(math.Cos(angle)*speed*0.3),
				float32(speed),
				float32(math.Sin(angle)*speed*0.3),
			),
		})
	}
	return dst
}

func buildExplosion(dst []systems.SpawnRequest, center particle.Vec3, count int, t particle.Type, rng *rand.Rand) []systems.SpawnRequest {
	for i := 0; i < count; i++ {
		theta := rng.Float64() * math.Pi
		phi := rng.Float64() * 2 * math.Pi
		speed := 10 + rng.Float64()*15
		dst = append(dst, systems.SpawnRequest{
			Type: t,
			Pos:  center,
			Vel: particle.V3(
				float32(speed*math.Sin(theta)*math.Cos(phi)),
				float32(speed*math.Sin(theta)*math.Sin(phi)+5),
				float32(speed*math.Cos(theta)),
			),
		})
	}
	return dst
}

func buildHourglass(dst []systems.SpawnRequest, center particle.Vec3, radius int, t particle.Type) []systems.SpawnRequest {
	for y := 0; y < radius*2; y++ {
		current := radius - abs(y-radius)/2
		if current < 1 {
			current = 1
		}
		for x := -current; x <= current; x++ {
			for z := -current; z <= current; z++ {
				if x*x+z*z > current*current {
					continue
				}
				dst = append(dst, systems.SpawnRequest{
					Type: t,
					Pos: particle.V3(
						center.X+float32(x)*sceneSpacing,
						center.Y+float32(y)*sceneSpacing,
						center.Z+float32(z)*sceneSpacing,
					),
				})
			}
		}
	}
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
