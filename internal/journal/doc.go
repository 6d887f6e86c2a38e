// Package journal keeps an audit trail of prop activations in SQLite.
//
// One row is written when a trigger is admitted and completed when the
// prop settles. The journal is write-mostly: the status API reads it for
// history, but the scheduler never does, so a restart always begins with
// every prop Idle and out of cooldown.
package journal
