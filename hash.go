package assetpack

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Default size for the buffers used when copying and hashing content
const defaultBufferSize = 32 * 1024 // 32KB

// bufferPool is a pool of byte slices used for content I/O
var bufferPool = sync.Pool{
	New: func() interface{} {
		buffer := make([]byte, defaultBufferSize)
		return &buffer
	},
}

// hashContent streams content into h.
func hashContent(content io.Reader, h hash.Hash) error {
	bufPtr := bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer bufferPool.Put(bufPtr)

	_, err := io.CopyBuffer(h, content, buffer)
	if err != nil {
		return fmt.Errorf("failed to copy content: %w", err)
	}
	return nil
}

// digest returns the hex xxHash64 of content.
func digest(content io.Reader) (string, error) {
	h := xxhash.New()
	if err := hashContent(content, h); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// memberHash hashes the concatenation of names with h.
func memberHash(h hash.Hash, names []string) string {
	for _, name := range names {
		h.Write([]byte(name))
	}
	return hex.EncodeToString(h.Sum(nil))
}
