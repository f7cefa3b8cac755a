package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are 26-character Crockford Base32 ULIDs: a 48-bit millisecond
// timestamp followed by 80 bits of randomness, so IDs sort by creation
// time.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

func generateULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ts<<16)
	rand.Read(b[6:])
	// Sequence in bytes 6-7 keeps IDs unique within the same millisecond.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeBase32(b)
}

// encodeBase32 encodes 128 bits as 26 Crockford Base32 characters. The
// 130-bit output space leaves the top two bits of the first character
// unused, matching the canonical ULID layout.
func encodeBase32(b [16]byte) string {
	var out [26]byte
	// Walk the bits from the top, 5 at a time.
	bitPos := -2 // pad to a multiple of 5
	for i := range out {
		var v uint
		for j := 0; j < 5; j++ {
			v <<= 1
			if bitPos >= 0 && b[bitPos/8]&(1<<(7-bitPos%8)) != 0 {
				v |= 1
			}
			bitPos++
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}

// NewJobID returns a fresh sortable job identifier.
func NewJobID() string {
	return generateULID()
}
