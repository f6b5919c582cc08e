// Package codec implements the Borsh binary format used on the wire between
// the EVM environment and the host ledger: little-endian fixed-width
// integers, u32 length prefixes for strings, byte strings and sequences,
// single-byte discriminants for enums and options, struct fields in
// declaration order.
package codec

import (
	"bytes"
	"fmt"
)

// Encode serializes the given object using the Borsh rules.
func Encode(obj interface{}) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	encoder := NewEncoder(buffer)

	err := encoder.Encode(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}

	return buffer.Bytes(), nil
}

// Decode deserializes the given byte slice into an object of the specified type.
func Decode(inp []byte, typ interface{}) (interface{}, error) {
	decoder := NewDecoder(bytes.NewReader(inp))

	err := decoder.Decode(typ)
	if err != nil {
		return nil, fmt.Errorf("decoding failed: %w", err)
	}

	return typ, nil
}
