package eventlog

import (
	"bytes"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	header := EncodeHeader(1724630400000, map[string]string{"k": "v"})
	payload := []byte("hello")
	enc := EncodeRecord(header, payload)

	dec, ok := DecodeRecord(enc)
	if !ok {
		t.Fatalf("decode failed")
	}
	if !bytes.Equal(dec.Payload, payload) {
		t.Fatalf("payload %q", dec.Payload)
	}
	if got := ProducedAtFromHeader(dec.Header); got != 1724630400000 {
		t.Fatalf("produced at %d", got)
	}
	if m := HeadersFromHeader(dec.Header); m["k"] != "v" {
		t.Fatalf("headers %v", m)
	}
}

func TestRecordNoHeaders(t *testing.T) {
	header := EncodeHeader(42, nil)
	if len(header) != 8 {
		t.Fatalf("header len %d", len(header))
	}
	if m := HeadersFromHeader(header); m != nil {
		t.Fatalf("want nil headers, got %v", m)
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	enc := EncodeRecord(EncodeHeader(1, nil), []byte("payload"))

	flipped := append([]byte(nil), enc...)
	flipped[len(flipped)/2] ^= 0xff
	if _, ok := DecodeRecord(flipped); ok {
		t.Fatalf("accepted corrupted record")
	}

	if _, ok := DecodeRecord(enc[:3]); ok {
		t.Fatalf("accepted truncated record")
	}
	if _, ok := DecodeRecord(nil); ok {
		t.Fatalf("accepted empty record")
	}
}

func TestDecodeRejectsOversizedHeaderLen(t *testing.T) {
	b := []byte{0xff, 0xff, 0x01, 0, 0, 0, 0}
	if _, ok := DecodeRecord(b); ok {
		t.Fatalf("accepted header length past buffer")
	}
}
