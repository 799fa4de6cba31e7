// Package inputsource names MCCS input-source codes (VCP 0x60) and keeps
// the selectable input-source catalog of one monitor.
//
// The catalog is rebuilt from the codes a monitor reports in its capability
// string. Codes outside the known set still produce an item, with an empty
// name, so a monitor with vendor-specific inputs remains switchable.
package inputsource
