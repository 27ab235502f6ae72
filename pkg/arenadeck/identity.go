package arenadeck

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/arenadeck/arenadeck-go/internal/safefile"
)

// identityHeadLen is how much of the file start is hashed into FileIdentity.
const identityHeadLen = 1024

// FileIdentity tells two generations of the log file apart. Key is the
// platform file id; Head hashes the first HeadLen bytes.
type FileIdentity struct {
	Key     string `yaml:"key" json:"key"`
	Head    string `yaml:"head" json:"head"`
	HeadLen int    `yaml:"head_len" json:"head_len"`
}

// IsZero reports whether the identity is unset.
func (id FileIdentity) IsZero() bool {
	return id == FileIdentity{}
}

// matches reports whether a file with the given key and leading bytes is the
// same generation as id. A file that only grew still matches because the
// comparison covers id.HeadLen bytes.
func (id FileIdentity) matches(key string, head []byte) bool {
	if id.Key != "" && key != "" && id.Key != key {
		return false
	}
	if len(head) < id.HeadLen {
		return false
	}
	return hashHead(head[:id.HeadLen]) == id.Head
}

// Identify computes the identity of the file at path.
func Identify(path string) (FileIdentity, error) {
	f, fi, err := safefile.OpenRegular(path)
	if err != nil {
		return FileIdentity{}, err
	}
	defer f.Close()

	id, _, err := identityOf(f, fi)
	return id, err
}

// SameFile reports whether the file at path is still the generation described
// by id.
func (id FileIdentity) SameFile(path string) (bool, error) {
	f, fi, err := safefile.OpenRegular(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, head, err := identityOf(f, fi)
	if err != nil {
		return false, err
	}
	return id.matches(platformKey(fi), head), nil
}

func identityOf(f *os.File, fi os.FileInfo) (FileIdentity, []byte, error) {
	n := fi.Size()
	if n > identityHeadLen {
		n = identityHeadLen
	}
	head := make([]byte, n)
	read, err := f.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return FileIdentity{}, nil, fmt.Errorf("read head: %w", err)
	}
	head = head[:read]
	return FileIdentity{
		Key:     platformKey(fi),
		Head:    hashHead(head),
		HeadLen: len(head),
	}, head, nil
}

func hashHead(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
