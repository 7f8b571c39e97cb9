package battle

import "errors"

// Setup errors.
var ErrInvalidBattleSetup = errors.New("invalid battle setup")

// Queueing and execution errors. Mutators return them alongside the
// unchanged input state.
var (
	ErrWrongPhase         = errors.New("not in planning phase")
	ErrUnknownUnit        = errors.New("unknown unit")
	ErrNotPlayerUnit      = errors.New("unit is not on the player team")
	ErrUnitKO             = errors.New("unit is knocked out")
	ErrEmptyTargets       = errors.New("no targets given")
	ErrUnknownTarget      = errors.New("unknown target")
	ErrWrongTargetSide    = errors.New("target on the wrong side")
	ErrUnknownAbility     = errors.New("unknown ability")
	ErrAbilityLocked      = errors.New("ability not unlocked")
	ErrQueueIncomplete    = errors.New("queue incomplete")
	ErrManaBudget         = errors.New("actions exceed mana budget")
	ErrDjinnAlreadyQueued = errors.New("djinn already queued")
	ErrDjinnNotEquipped   = errors.New("djinn not equipped")
	ErrDjinnNotSet        = errors.New("djinn not in Set state")
	ErrInvalidTransition  = errors.New("invalid phase transition")
	ErrNoRNG              = errors.New("nil rng")
)
