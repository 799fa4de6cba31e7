// Package persistence stores per-monitor customization across restarts.
//
// Customization is keyed by the monitor's device instance ID, so it
// survives display reconfiguration and handle replacement. The record holds
// the user-visible name, whether the monitor follows unison adjustment, and
// the customized brightness range.
//
// Three stores are provided: FileStore (JSON file), MemoryStore (tests and
// ephemeral use), and the SQLite store in the sqlite subpackage.
package persistence
