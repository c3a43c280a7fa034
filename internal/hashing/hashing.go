// Package hashing computes content hashes used for deduplication and for
// content-addressed artwork paths.
package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Hash digests a byte stream incrementally and returns the lowercase hex
// content hash. The whole stream never needs to fit in memory.
func Hash(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash stream: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile hashes the contents of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Hash(f)
}

// HashBytes hashes an in-memory buffer. Used for embedded artwork that was
// already extracted from the audio container.
func HashBytes(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
