package codec

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

var errShortFrame = errors.New("codec: frame shorter than declared length")

// WriteFrame prepends a varint length prefix to msg, so a stream transport
// (or a single binary websocket frame) carries exactly one envelope per
// frame with no ambiguity about where it ends.
func WriteFrame(msg []byte) []byte {
	out := protowire.AppendVarint(nil, uint64(len(msg)))
	return append(out, msg...)
}

// ReadFrame strips the varint length prefix written by WriteFrame and
// returns the framed message plus any trailing bytes (normally none, since
// transport.Conn delivers one frame per Recv).
func ReadFrame(b []byte) (msg []byte, rest []byte, err error) {
	length, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, nil, protowire.ParseError(n)
	}
	b = b[n:]
	if uint64(len(b)) < length {
		return nil, nil, errShortFrame
	}
	return b[:length], b[length:], nil
}
