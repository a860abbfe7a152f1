package particle

// CapacityPolicy decides what happens to spawn requests once the store is
// full.
type CapacityPolicy uint8

const (
	// DropNew silently discards the spawn request.
	DropNew CapacityPolicy = iota
	// RecycleOldest despawns the oldest live particle to make room.
	RecycleOldest
)

// Particle is one grain of sand. IDs are assigned in strictly increasing
// order and never reused, so store order (which compaction preserves) is
// also ascending-ID order.
type Particle struct {
	ID     uint32
	Pos    Vec3
	Vel    Vec3
	Type   Type
	Radius float32
	Mass   float32
	Alive  bool
}

// Store holds all particles in a dense slice. Spawns append, despawns mark
// dead, and Compact removes dead entries in place at the end of a frame.
// Indices are therefore stable for the duration of a frame.
type Store struct {
	particles []Particle
	nextID    uint32
	capacity  int
	policy    CapacityPolicy
	alive     int
}

func NewStore(capacity int, policy CapacityPolicy) *Store {
	return &Store{
		particles: make([]Particle, 0, capacity),
		nextID:    1,
		capacity:  capacity,
		policy:    policy,
	}
}

// SetCapacity updates the cap and policy. Shrinking below the current live
// count does not evict existing particles; it only blocks new spawns until
// attrition brings the count back down.
func (s *Store) SetCapacity(capacity int, policy CapacityPolicy) {
	s.capacity = capacity
	s.policy = policy
}

// Spawn appends a particle built from the given profile. It returns the
// assigned ID and false when the request was dropped by capacity policy.
func (s *Store) Spawn(t Type, prof Profile, pos, vel Vec3) (uint32, bool) {
	if s.alive >= s.capacity {
		if s.policy == DropNew {
			return 0, false
		}
		if !s.killOldest() {
			return 0, false
		}
	}
	id := s.nextID
	s.nextID++
	s.particles = append(s.particles, Particle{
		ID:     id,
		Pos:    pos,
		Vel:    vel,
		Type:   t,
		Radius: prof.Radius,
		Mass:   prof.Mass,
		Alive:  true,
	})
	s.alive++
	return id, true
}

func (s *Store) killOldest() bool {
	for i := range s.particles {
		if s.particles[i].Alive {
			s.particles[i].Alive = false
			s.alive--
			return true
		}
	}
	return false
}

// KillAt marks the particle at index i dead. The slot survives until the
// next Compact so indices held by the solvers stay valid.
func (s *Store) KillAt(i int) {
	if s.particles[i].Alive {
		s.particles[i].Alive = false
		s.alive--
	}
}

// Despawn marks the particle with the given ID dead. Returns false when no
// live particle has that ID.
func (s *Store) Despawn(id uint32) bool {
	for i := range s.particles {
		if s.particles[i].ID == id && s.particles[i].Alive {
			s.KillAt(i)
			return true
		}
	}
	return false
}

// Len returns the number of live particles.
func (s *Store) Len() int { return s.alive }

// Size returns the slot count including dead entries awaiting compaction.
func (s *Store) Size() int { return len(s.particles) }

// At returns a pointer to the particle at index i. The pointer is valid
// until the next Compact.
func (s *Store) At(i int) *Particle { return &s.particles[i] }

// ForEachAlive calls fn for every live particle in ascending-ID order.
func (s *Store) ForEachAlive(fn func(i int, p *Particle)) {
	for i := range s.particles {
		if s.particles[i].Alive {
			fn(i, &s.particles[i])
		}
	}
}

// Compact removes dead particles in place, preserving the order of the
// survivors. Call only between frames.
func (s *Store) Compact() {
	keep := s.particles[:0]
	for i := range s.particles {
		if s.particles[i].Alive {
			keep = append(keep, s.particles[i])
		}
	}
	// Zero the tail so dead entries do not linger in the backing array.
	for i := len(keep); i < len(s.particles); i++ {
		s.particles[i] = Particle{}
	}
	s.particles = keep
}

// Clear removes every particle. ID assignment continues from where it left
// off, so IDs stay unique across resets.
func (s *Store) Clear() {
	s.particles = s.particles[:0]
	s.alive = 0
}
