package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"hash"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// InputHash identifies an ordered sequence set. Sequences are length
// prefixed so that {"AC", "G"} and {"A", "CG"} differ.
func InputHash(seqs []string) string {
	h := sha256.New()
	writeLen(h, len(seqs))
	for _, s := range seqs {
		writeLen(h, len(s))
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeLen(h hash.Hash, n int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
}

// hashKey renders "kind:sha256(parts)". The parts are JSON encoded so that
// field boundaries survive.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}
