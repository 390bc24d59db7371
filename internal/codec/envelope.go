package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// ActionEnvelope is the client-to-server request message: a named action,
// a correlation id reused as the matching ResultEnvelope's actionId, and
// an action-specific payload nested as opaque bytes (decoded separately
// once the action tag is known).
type ActionEnvelope struct {
	Action   domaintypes.ActionTag
	ActionID string
	Payload  []byte
}

const (
	fieldEnvelopeAction   protowire.Number = 1
	fieldEnvelopeActionID protowire.Number = 2
	fieldEnvelopePayload  protowire.Number = 3
)

// Marshal encodes the envelope using protowire field primitives.
func (e ActionEnvelope) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldEnvelopeAction, string(e.Action))
	b = appendString(b, fieldEnvelopeActionID, e.ActionID)
	b = appendBytes(b, fieldEnvelopePayload, e.Payload)
	return b
}

// UnmarshalActionEnvelope decodes an ActionEnvelope. Any field number other
// than the three declared above is a protocol error.
func UnmarshalActionEnvelope(b []byte) (ActionEnvelope, error) {
	var e ActionEnvelope
	err := consumeFields("ActionEnvelope", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldEnvelopeAction:
			s, n, err := consumeString(typ, rest)
			if err != nil {
				return 0, err
			}
			e.Action = domaintypes.ActionTag(s)
			return n, nil
		case fieldEnvelopeActionID:
			s, n, err := consumeString(typ, rest)
			if err != nil {
				return 0, err
			}
			e.ActionID = s
			return n, nil
		case fieldEnvelopePayload:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			e.Payload = v
			return n, nil
		default:
			return -1, nil
		}
	})
	return e, err
}

// ResultEnvelope is the server-to-client reply. Exactly one of Data/Error
// is populated; an empty Error means success even with empty Data.
type ResultEnvelope struct {
	Action   domaintypes.ActionTag
	ActionID string
	Data     []byte
	Error    string
	HasData  bool
}

const (
	fieldResultActionID protowire.Number = 1
	fieldResultAction   protowire.Number = 2
	fieldResultData     protowire.Number = 3
	fieldResultError    protowire.Number = 4
)

// Marshal encodes the result using protowire field primitives.
func (r ResultEnvelope) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldResultActionID, r.ActionID)
	b = appendString(b, fieldResultAction, string(r.Action))
	if r.HasData || len(r.Data) > 0 {
		b = protowire.AppendTag(b, fieldResultData, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Data)
	}
	b = appendString(b, fieldResultError, r.Error)
	return b
}

// UnmarshalResultEnvelope decodes a ResultEnvelope.
func UnmarshalResultEnvelope(b []byte) (ResultEnvelope, error) {
	var r ResultEnvelope
	err := consumeFields("ResultEnvelope", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldResultActionID:
			s, n, err := consumeString(typ, rest)
			if err != nil {
				return 0, err
			}
			r.ActionID = s
			return n, nil
		case fieldResultAction:
			s, n, err := consumeString(typ, rest)
			if err != nil {
				return 0, err
			}
			r.Action = domaintypes.ActionTag(s)
			return n, nil
		case fieldResultData:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			r.Data = v
			r.HasData = true
			return n, nil
		case fieldResultError:
			s, n, err := consumeString(typ, rest)
			if err != nil {
				return 0, err
			}
			r.Error = s
			return n, nil
		default:
			return -1, nil
		}
	})
	return r, err
}
