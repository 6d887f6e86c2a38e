// Package prop turns raw sensor traffic into trigger decisions.
//
// The Router sorts incoming readings into one Inbox per bound sensor. Each
// prop task owns a Detector that reads its inbox on a fixed cadence and
// applies one of two rules:
//
//   - consecutive: two neighbouring readings above the threshold. Suits
//     PIR sensors that chatter a single false high.
//   - max: the largest reading in the window above the threshold. Suits
//     analog sensors that report sparse peaks.
//
// Comparisons are strictly greater-than. A payload that is not an integer
// never counts as high.
package prop
