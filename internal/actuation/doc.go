// Package actuation sends timed command sequences to prop actuator boards.
//
// A Plan is a list of Steps. Each step publishes an opaque command string
// (for example "S500,300,500,300,1000" or "A11") to device/<id>/actuator,
// then waits its delay before the next step. Boards never acknowledge, so
// a lost command is simply lost.
package actuation
