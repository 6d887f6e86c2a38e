// Package show runs the props.
//
// Each prop gets one Task: a goroutine that polls its sensor's detector on
// a fixed cadence and, when a trigger is admitted, plays the prop's sounds
// and sends its actuation plan. A prop moves through
//
//	Idle -> Admitted -> Running -> Idle
//
// and is deaf while Running: anything its sensor reports during the run is
// discarded when it settles, never replayed.
//
// Admission needs the prop's own cooldown to have passed, plus whatever
// the show-wide Arbiter demands in the configured mode:
//
//   - independent: nothing more.
//   - exclusive: no other exclusive prop may be Running.
//   - sound_gap: props with sounds wait until the last sound has played
//     for at least min_sound_gap_s.
//
// A refused trigger is dropped without side effects. The show prefers a
// missed scare to a double one.
package show
