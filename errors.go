package scrollreel

import "errors"

// Configuration errors returned by Attach, NewEngine and NewProgressSource.
// They are wrapped with context; test with errors.Is.
var (
	ErrNoSignalSource    = errors.New("no signal source")
	ErrDegenerateRegion  = errors.New("trigger region end must be greater than start")
	ErrUnresolvedElement = errors.New("element reference not resolved")
	ErrCountMismatch     = errors.New("element count does not match declaration")
	ErrUnknownSet        = errors.New("unknown element set")
	ErrUnknownTrack      = errors.New("unknown anchor track")
	ErrDuplicateTrack    = errors.New("duplicate track name")
	ErrAnchorCycle       = errors.New("anchor cycle")
	ErrInvalidSegment    = errors.New("invalid segment")
	ErrInvalidValue      = errors.New("invalid property value")
	ErrAlreadyAttached   = errors.New("trigger region already attached")
	ErrTargetOwned       = errors.New("target is animated by another handle")
)
