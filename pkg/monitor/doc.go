// Package monitor defines the hardware-access contract for a single
// physical display and the classified outcome of every access attempt.
//
// A Handle is the live object bound to one monitor. It issues exactly one
// DDC/CI attempt per call and reports the outcome as an AccessResult. The
// reliability logic built on top of it (confidence counting, escalation,
// handle replacement) lives in package control.
//
// # Access Status
//
// Every attempt is classified as one of:
//   - Succeeded: the command completed
//   - Failed: the attempt failed without further detail
//   - DdcFailed: the device is present but rejected the command
//   - TransmissionFailed: the physical link failed
//   - NoLongerExist: the handle no longer maps to a present device
//
// Results are never retried at this layer.
package monitor
