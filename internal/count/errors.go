package count

import "errors"

// ErrMissingContext is returned when Submit is called on an engine that was
// never configured with a session and zone.
var ErrMissingContext = errors.New("count engine has no session or zone configured")
