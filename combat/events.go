package combat

// Event is an outbound, fire-and-forget notification. The core publishes
// events whether or not anyone is listening.
type Event struct {
	Type string
	Data any
}

const (
	EventControllerFired = "controller:fired"
	EventWeaponFired     = "weapons:fired"
	EventWeaponAOE       = "weapons:aoe"
	EventWeaponExploded  = "weapons:exploded"
)

// ControllerFired reports a controller committing to its next shot.
type ControllerFired struct {
	WeaponKey  string
	DelayMs    int64
	NextFireAt int64
}

// WeaponFired reports a weapon releasing its effect.
type WeaponFired struct {
	WeaponKey string
}

// WeaponAOE reports an area effect resolving at a point.
type WeaponAOE struct {
	WeaponKey string
	X, Y      float64
	Radius    float64
	Hits      int
}

// WeaponExploded reports a projectile detonation.
type WeaponExploded struct {
	WeaponKey string
	X, Y      float64
	Radius    float64
	Hits      int
}

// Sink receives outbound events. A nil Sink is valid and drops everything.
type Sink func(Event)

func (s Sink) emit(evtType string, data any) {
	if s == nil {
		return
	}
	s(Event{Type: evtType, Data: data})
}
