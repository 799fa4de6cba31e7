// Package rescan re-enumerates monitors on request.
//
// Sessions ask for a rescan when an access fails in a way that suggests the
// display configuration changed. A Worker collects those requests, waits a
// short settle period so a burst of failures triggers one scan, and runs the
// scan in the background. Failed scans are retried with exponential backoff
// and jitter until one succeeds or a new request arrives.
package rescan
