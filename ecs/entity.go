package ecs

// Entity is a generation-tagged handle. Destroying an entity bumps the
// slot's generation, so handles held past destruction stop resolving
// instead of aliasing the slot's next occupant.
type Entity struct {
	ID  int
	Gen int
}

// Valid reports whether the handle was ever issued.
func (e Entity) Valid() bool {
	return e.ID > 0
}

// Key packs the handle into a single comparable 64-bit value.
func (e Entity) Key() uint64 {
	return uint64(e.Gen)<<32 | uint64(uint32(e.ID))
}

// EntityFromKey unpacks a handle packed by Key.
func EntityFromKey(k uint64) Entity {
	return Entity{ID: int(uint32(k)), Gen: int(k >> 32)}
}

// entityStore tracks entity generations and free ids.
type entityStore struct {
	nextID int
	gen    []int
	free   []int
}

func (s *entityStore) create() Entity {
	if s == nil {
		return Entity{}
	}
	var id int
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.nextID++
		id = s.nextID
	}
	for id > len(s.gen) {
		s.gen = append(s.gen, 0)
	}
	return Entity{ID: id, Gen: s.gen[id-1]}
}

func (s *entityStore) destroy(e Entity) bool {
	if s == nil || e.ID <= 0 || e.ID > len(s.gen) {
		return false
	}
	if s.gen[e.ID-1] != e.Gen {
		return false
	}
	s.gen[e.ID-1]++
	s.free = append(s.free, e.ID)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil || e.ID <= 0 || e.ID > len(s.gen) {
		return false
	}
	return s.gen[e.ID-1] == e.Gen
}
