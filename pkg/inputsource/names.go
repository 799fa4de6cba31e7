package inputsource

// Source is an MCCS input-source code.
type Source byte

// Input-source codes defined by MCCS for VCP 0x60.
const (
	VGA1            Source = 0x01
	VGA2            Source = 0x02
	DVI1            Source = 0x03
	DVI2            Source = 0x04
	CompositeVideo1 Source = 0x05
	CompositeVideo2 Source = 0x06
	SVideo1         Source = 0x07
	SVideo2         Source = 0x08
	Tuner1          Source = 0x09
	Tuner2          Source = 0x0A
	Tuner3          Source = 0x0B
	ComponentVideo1 Source = 0x0C
	ComponentVideo2 Source = 0x0D
	ComponentVideo3 Source = 0x0E
	DisplayPort1    Source = 0x0F
	DisplayPort2    Source = 0x10
	HDMI1           Source = 0x11
	HDMI2           Source = 0x12
)

var sourceNames = map[Source]string{
	VGA1:            "VGA1",
	VGA2:            "VGA2",
	DVI1:            "DVI1",
	DVI2:            "DVI2",
	CompositeVideo1: "CompositeVideo1",
	CompositeVideo2: "CompositeVideo2",
	SVideo1:         "SVideo1",
	SVideo2:         "SVideo2",
	Tuner1:          "Tuner1",
	Tuner2:          "Tuner2",
	Tuner3:          "Tuner3",
	ComponentVideo1: "ComponentVideo1",
	ComponentVideo2: "ComponentVideo2",
	ComponentVideo3: "ComponentVideo3",
	DisplayPort1:    "DisplayPort1",
	DisplayPort2:    "DisplayPort2",
	HDMI1:           "HDMI1",
	HDMI2:           "HDMI2",
}

// Name returns the MCCS name of a code, or "" if the code is not known.
func Name(code byte) string {
	return sourceNames[Source(code)]
}

// String returns the MCCS name, or "UNKNOWN".
func (s Source) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}
