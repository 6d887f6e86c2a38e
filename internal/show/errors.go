package show

import "errors"

// Domain errors for the show package.
var (
	// ErrNoRouter is returned when a runner is built without a router.
	ErrNoRouter = errors.New("show: router is required")

	// ErrNoDispatcher is returned when a prop has actions but no dispatcher
	// was supplied.
	ErrNoDispatcher = errors.New("show: dispatcher is required for props with actions")

	// ErrNoMixer is returned when a prop has sounds but no mixer was
	// supplied.
	ErrNoMixer = errors.New("show: mixer is required for props with sounds")
)
