package monitor

// Attribute is a hardware-controlled monitor attribute. Values are the MCCS
// VCP codes used to access it.
type Attribute uint8

const (
	// AttributeBrightness is VCP 0x10 (luminance).
	AttributeBrightness Attribute = 0x10

	// AttributeContrast is VCP 0x12.
	AttributeContrast Attribute = 0x12

	// AttributeInputSource is VCP 0x60.
	AttributeInputSource Attribute = 0x60
)

// String returns the attribute name.
func (a Attribute) String() string {
	switch a {
	case AttributeBrightness:
		return "brightness"
	case AttributeContrast:
		return "contrast"
	case AttributeInputSource:
		return "inputSource"
	default:
		return "unknown"
	}
}
