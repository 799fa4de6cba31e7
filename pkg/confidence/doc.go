// Package confidence tracks whether a monitor should be considered
// controllable, based on the recent outcome of hardware accesses.
//
// # Counter Behavior
//
// The counter starts at InitialCount so that a newly found monitor is
// assumed controllable. Each failure decrements it; each success restores it
// to NormalCount. The monitor is controllable while the count is positive.
//
//   - InitialCount (3) gives allowance for failures before the first success.
//     If it is consumed without any success, the monitor is regarded as not
//     controllable at all.
//   - NormalCount (5) gives a larger allowance once the monitor has proven
//     itself.
//   - Confirmed is set at the first success and never cleared.
//
// InitialCount is smaller than NormalCount so that the first success always
// takes the restore path and sets Confirmed.
//
// # Transitions
//
// RecordSuccess and RecordFailure report a controllability transition so the
// caller can emit a change notification exactly once per crossing. A failure
// reports a transition only when the count reaches exactly zero; further
// failures below zero are silent.
package confidence
