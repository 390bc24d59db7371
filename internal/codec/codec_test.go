package codec_test

import (
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/codec"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

func TestActionEnvelopeRoundTrip(t *testing.T) {
	want := codec.ActionEnvelope{
		Action:   codec.ActionDigest,
		ActionID: "7",
		Payload:  []byte("payload-bytes"),
	}
	got, err := codec.UnmarshalActionEnvelope(want.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalActionEnvelope: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestResultEnvelopeRoundTripWithData(t *testing.T) {
	want := codec.ResultEnvelope{
		Action:   codec.ActionDigest,
		ActionID: "7",
		Data:     []byte{1, 2, 3},
		HasData:  true,
	}
	got, err := codec.UnmarshalResultEnvelope(want.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalResultEnvelope: %v", err)
	}
	if got.ActionID != want.ActionID || got.Action != want.Action || string(got.Data) != string(want.Data) || got.Error != "" {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestResultEnvelopeRoundTripWithError(t *testing.T) {
	want := codec.ResultEnvelope{ActionID: "9", Error: "Unknown action 'Bogus'"}
	got, err := codec.UnmarshalResultEnvelope(want.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalResultEnvelope: %v", err)
	}
	if got.Error != want.Error || got.HasData {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestUnmarshalActionEnvelopeRejectsUnknownField(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, "Digest")
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "surprise")

	if _, err := codec.UnmarshalActionEnvelope(b); err == nil {
		t.Fatalf("expected an error decoding an envelope with an unknown field")
	}
}

func TestGenerateKeyPayloadRoundTrip(t *testing.T) {
	want := codec.GenerateKeyPayload{
		ProviderID:  "software",
		Alg:         "ECDSA-P256",
		Extractable: true,
		Usages:      []domaintypes.KeyUsage{domaintypes.UsageSign, domaintypes.UsageVerify},
	}
	got, err := codec.UnmarshalGenerateKeyPayload(want.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalGenerateKeyPayload: %v", err)
	}
	if got.ProviderID != want.ProviderID || got.Alg != want.Alg || got.Extractable != want.Extractable || len(got.Usages) != 2 {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestGenerateKeyResultRoundTripPair(t *testing.T) {
	pub := domaintypes.CryptoHandle{ID: "abc123", ProviderID: "software", Kind: domaintypes.HandlePublicKey}
	priv := domaintypes.CryptoHandle{ID: "abc123", ProviderID: "software", Kind: domaintypes.HandlePrivateKey}
	want := codec.GenerateKeyResult{Public: &pub, Private: &priv}

	got, err := codec.UnmarshalGenerateKeyResult(want.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalGenerateKeyResult: %v", err)
	}
	if got.Public == nil || got.Private == nil || *got.Public != pub || *got.Private != priv {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	msg := []byte("hello envelope")
	framed := codec.WriteFrame(msg)
	got, rest, err := codec.ReadFrame(framed)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(got) != string(msg) || len(rest) != 0 {
		t.Fatalf("got %q rest=%q, want %q", got, rest, msg)
	}
}
