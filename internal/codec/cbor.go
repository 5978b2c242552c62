package codec

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// encMode writes deterministic CBOR with RFC 3339 timestamps
var encMode cbor.EncMode

// decMode is lenient about duplicate keys and indefinite lengths
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// CBORCodec handles CBOR import/export
type CBORCodec struct{}

// NewCBORCodec creates a new CBOR codec
func NewCBORCodec() *CBORCodec {
	return &CBORCodec{}
}

// Format returns the codec format identifier
func (c *CBORCodec) Format() string {
	return "cbor"
}

// Parse reads a snapshot from CBOR
func (c *CBORCodec) Parse(r io.Reader) (*Snapshot, error) {
	var snapshot Snapshot
	if err := decMode.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse CBOR: %w", err)
	}
	return &snapshot, nil
}

// Export writes a snapshot as a single CBOR item
func (c *CBORCodec) Export(snapshot *Snapshot, w io.Writer) error {
	if err := encMode.NewEncoder(w).Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return nil
}

// MarshalCBOR encodes any value with the snapshot encoding options
func MarshalCBOR(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// UnmarshalCBOR decodes a value with the snapshot decoding options
func UnmarshalCBOR(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
