package bank

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// hashVersion prefixes every digest so a future change to the
// canonical encoding cannot collide with old hashes.
const hashVersion = "qforge:v1"

// ContentHash computes the deterministic digest over the normalized
// (question_canonical, answer_short, answer_long) triple. Fields are
// trimmed and length-prefixed so no two distinct triples share an
// encoding. Notes, tags and every other field are deliberately
// excluded: the hash tracks semantic content only.
func ContentHash(questionCanonical, answerShort, answerLong string) string {
	h := sha256.New()
	_, _ = io.WriteString(h, hashVersion)
	for _, part := range []string{questionCanonical, answerShort, answerLong} {
		p := strings.TrimSpace(part)
		_, _ = fmt.Fprintf(h, "\x1f%d\x1f", len(p))
		_, _ = io.WriteString(h, p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FileHash computes the sha256 hex digest of a byte stream (source
// files, export archives).
func FileHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
