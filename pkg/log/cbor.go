package log

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// captureCodec holds the CBOR modes for capture files. Capture records are
// small flat maps, so decoding caps nesting and container sizes and rejects
// duplicate keys: a damaged record fails fast instead of being misread or
// allocating from a corrupt length.
type captureCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var codec = newCaptureCodec()

func newCaptureCodec() captureCodec {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		ShortestFloat: cbor.ShortestFloat16,
		Time:          cbor.TimeRFC3339Nano,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}.EncMode()
	if err != nil {
		panic("log: capture encoder: " + err.Error())
	}
	dec, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		MaxNestedLevels:  8,
		MaxArrayElements: 1024,
		MaxMapPairs:      64,
	}.DecMode()
	if err != nil {
		panic("log: capture decoder: " + err.Error())
	}
	return captureCodec{enc: enc, dec: dec}
}

// EncodeEvent encodes one capture record.
func EncodeEvent(event Event) ([]byte, error) {
	return codec.enc.Marshal(event)
}

// DecodeEvent decodes one capture record.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := codec.dec.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns a stream encoder appending records to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return codec.enc.NewEncoder(w)
}

// NewDecoder returns a stream decoder reading records from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return codec.dec.NewDecoder(r)
}
