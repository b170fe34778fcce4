package component

// Statuses tracks timed status tags on an entity, keyed by tag with the
// clock timestamp (ms) at which each tag expires.
type Statuses struct {
	ExpiresAt map[string]int64
}

// NewStatuses creates an empty status set.
func NewStatuses() *Statuses {
	return &Statuses{ExpiresAt: make(map[string]int64)}
}

// Apply sets or extends a status tag until the given timestamp.
func (s *Statuses) Apply(tag string, until int64) {
	if s == nil || tag == "" {
		return
	}
	if s.ExpiresAt == nil {
		s.ExpiresAt = make(map[string]int64)
	}
	if cur, ok := s.ExpiresAt[tag]; !ok || until > cur {
		s.ExpiresAt[tag] = until
	}
}

// Has reports whether a status tag is active at the given time, dropping
// expired entries as a side effect.
func (s *Statuses) Has(tag string, now int64) bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	until, ok := s.ExpiresAt[tag]
	if !ok {
		return false
	}
	if now >= until {
		delete(s.ExpiresAt, tag)
		return false
	}
	return true
}
