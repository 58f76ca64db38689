package utils

import (
	"encoding/hex"
	"hash"
	"io"
)

// HashingReader tees a hash while reading
type HashingReader struct {
	reader io.Reader
	hash   io.Writer
}

func (hr *HashingReader) Read(p []byte) (n int, err error) {
	n, err = hr.reader.Read(p)
	if n > 0 {
		hr.hash.Write(p[:n])
	}
	return
}

// CreateHashingReader creates a reader that calculates a hash while reading
func CreateHashingReader(reader io.Reader, hash io.Writer) *HashingReader {
	return &HashingReader{
		reader: reader,
		hash:   hash,
	}
}

// HashHex returns the hex digest accumulated so far.
// Call this after streaming is complete.
func HashHex(hash hash.Hash) string {
	return hex.EncodeToString(hash.Sum(nil))
}
