package eventlog

import (
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
)

// Record encoding: varint headerLen | header | payload | crc32c(header|payload).
// The header is 8 bytes of big-endian produced-at milliseconds, optionally
// followed by a JSON object of user headers.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// EncodeHeader packs the produced-at timestamp and optional user headers.
func EncodeHeader(producedAtMs int64, headers map[string]string) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(producedAtMs))
	if len(headers) > 0 {
		if b, err := json.Marshal(headers); err == nil {
			out = append(out, b...)
		}
	}
	return out
}

// ProducedAtFromHeader extracts the produced-at milliseconds, 0 if absent.
func ProducedAtFromHeader(header []byte) int64 {
	if len(header) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(header[:8]))
}

// HeadersFromHeader extracts the user headers map, nil if absent or invalid.
func HeadersFromHeader(header []byte) map[string]string {
	if len(header) <= 8 {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(header[8:], &m); err != nil {
		return nil
	}
	return m
}

// EncodeRecord frames header and payload with a trailing checksum.
func EncodeRecord(header, payload []byte) []byte {
	out := make([]byte, 0, 10+len(header)+len(payload)+4)
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(header)))
	out = append(out, tmp[:n]...)
	out = append(out, header...)
	out = append(out, payload...)

	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	out = append(out, crcb[:]...)
	return out
}

// Decoded is the unframed form of a stored record.
type Decoded struct {
	Header  []byte
	Payload []byte
}

// DecodeRecord unframes a stored record, verifying the checksum. Returns
// false for truncated or corrupted input.
func DecodeRecord(b []byte) (Decoded, bool) {
	if len(b) < 1+4 {
		return Decoded{}, false
	}
	hlen, n := binary.Uvarint(b)
	if n <= 0 {
		return Decoded{}, false
	}
	if int(n)+int(hlen)+4 > len(b) {
		return Decoded{}, false
	}
	header := b[n : n+int(hlen)]
	payload := b[n+int(hlen) : len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	if crc != expect {
		return Decoded{}, false
	}
	return Decoded{Header: append([]byte(nil), header...), Payload: append([]byte(nil), payload...)}, true
}
