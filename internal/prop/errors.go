package prop

import "errors"

// Domain errors for the prop package.
var (
	// ErrUnknownRule is returned when a detector is built with a rule name
	// other than "max" or "consecutive".
	ErrUnknownRule = errors.New("prop: unknown detection rule")

	// ErrNotSensor is returned when binding an inbox for a device that is
	// not declared as a sensor.
	ErrNotSensor = errors.New("prop: device is not a declared sensor")

	// ErrAlreadyBound is returned when a sensor already feeds another prop.
	ErrAlreadyBound = errors.New("prop: sensor already bound")
)
