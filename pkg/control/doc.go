// Package control implements the monitor access reliability layer.
//
// A Session owns the live handle of one physical monitor and serializes every
// hardware access against it. Each access is attempted exactly once; its
// outcome is folded into a confidence counter that decides whether the
// monitor is presented as controllable. A Registry owns all sessions, swaps a
// session's handle when the OS reports a fresh one for the same device, and
// forwards rescan requests to the discovery collaborator.
//
// # Access Protocol
//
// For every Set and Update operation a Session:
//  1. acquires its mutex (operations on other monitors are unaffected)
//  2. calls the handle exactly once
//  3. records the outcome in its confidence counter
//  4. releases the mutex
//  5. emits events: the attribute first, then controllability and reason if
//     they changed
//  6. on DdcFailed, TransmissionFailed or NoLongerExist, requests a rescan
//
// Set operations whose value equals the cached value make no hardware call.
//
// # Handle Replacement
//
// Replacement keeps the confidence counter, customization and input-source
// catalog of the session; only the handle changes. An unreachable
// replacement handle is disposed immediately and the session is untouched.
//
// # Events
//
// Observers registered with Subscribe receive events synchronously on the
// goroutine that performed the operation, after the session mutex has been
// released. Observers may call back into the session.
package control
