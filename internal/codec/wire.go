// Package codec implements the gateway's wire envelope: a length-delimited
// binary framing built directly on
// google.golang.org/protobuf/encoding/protowire field primitives. There is
// no .proto file and no generated code — every message type hand-rolls its
// own Marshal/Unmarshal using the same wire-level API protoc-generated code
// would use, so the bytes on the wire remain protobuf-compatible. Decoding
// a field number a message type does not recognize is always an error;
// nothing is silently skipped.
package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrUnknownField is wrapped into a descriptive error whenever a message
// decoder encounters a field number it does not define.
type ErrUnknownField struct {
	Message string
	Field   protowire.Number
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("codec: unknown field %d in %s", e.Field, e.Message)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

// fieldVisitor is called once per encoded field; unmarshal loops call it
// and return ErrUnknownField for any field number it doesn't consume.
type fieldVisitor func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error)

func consumeFields(messageName string, b []byte, visit fieldVisitor) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("codec: %s: bad tag: %w", messageName, protowire.ParseError(n))
		}
		b = b[n:]
		consumed, err := visit(num, typ, b)
		if err != nil {
			return err
		}
		if consumed < 0 {
			return &ErrUnknownField{Message: messageName, Field: num}
		}
		b = b[consumed:]
	}
	return nil
}

func consumeString(typ protowire.Type, b []byte) (string, int, error) {
	if typ != protowire.BytesType {
		return "", 0, fmt.Errorf("codec: expected bytes wire type, got %d", typ)
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("codec: expected bytes wire type, got %d", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("codec: expected varint wire type, got %d", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}
