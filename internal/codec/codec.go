// Package codec implements the self-delimiting wire/log format shared by the
// storage engine's command log and the network protocol: concatenated JSON
// values with no length prefix and no separator, decoded one at a time.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrDecode wraps a malformed or truncated record/message. It is fatal to the
// caller: recovery aborts, a server connection is closed.
var ErrDecode = errors.New("codec: malformed record")

// Marshal renders v as a single self-delimiting JSON value.
func Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	return b, nil
}

// Decoder decodes a stream of concatenated JSON values, reporting the byte
// offset immediately past each one so callers can compute exact record
// lengths by differencing — the same contract as serde_json's
// StreamDeserializer::byte_offset.
type Decoder struct {
	d *json.Decoder
}

// NewDecoder wraps r for streaming decode starting at r's current position.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{d: json.NewDecoder(r)}
}

// Next decodes the next value into v and returns the stream offset
// immediately past it. It returns io.EOF (unwrapped) when the stream is
// exhausted at a record boundary.
func (d *Decoder) Next(v any) (offset int64, err error) {
	if err := d.d.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return d.d.InputOffset(), nil
}
