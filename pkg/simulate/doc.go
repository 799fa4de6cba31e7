// Package simulate provides a scriptable in-memory monitor handle.
//
// A Monitor behaves like a DDC/CI monitor: it keeps hardware values that
// change only when written or changed externally, and cached values that
// follow them on successful Set and Update calls. Failures can be injected
// per call, and the monitor records how often it was called and whether
// two calls ever overlapped.
//
// Monitors are described with Config, which decodes from YAML:
//
//	- id: DISPLAY\DEL40A3\5&1a2b3c&0&UID4353
//	  description: DELL U2720Q
//	  kind: ddc
//	  brightness: 60
//	  contrast: 75
//	  input_sources: [0x0F, 0x11, 0x12]
//	  input_source: 0x0F
//	  latency: 40ms
//
// A Fleet groups monitors and plays the part of OS enumeration: each Scan
// hands out fresh handles for the monitors currently plugged in.
package simulate
