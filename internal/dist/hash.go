package dist

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Digests holds the hex digests the upload API carries for each file.
type Digests struct {
	MD5     string
	SHA256  string
	Blake2b string // blake2b-256
}

// HashFile computes the md5, sha256 and blake2b-256 digests of a file in a
// single pass.
func HashFile(path string) (Digests, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digests{}, err
	}
	defer f.Close()
	return hashReader(f)
}

func hashReader(r io.Reader) (Digests, error) {
	m := md5.New()
	s := sha256.New()
	b, err := blake2b.New256(nil)
	if err != nil {
		return Digests{}, err
	}

	if _, err := io.Copy(io.MultiWriter(m, s, b), r); err != nil {
		return Digests{}, err
	}

	return Digests{
		MD5:     hex.EncodeToString(m.Sum(nil)),
		SHA256:  hex.EncodeToString(s.Sum(nil)),
		Blake2b: hex.EncodeToString(b.Sum(nil)),
	}, nil
}
