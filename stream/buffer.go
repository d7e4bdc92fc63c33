package stream

import "bytes"

var blockSeparator = []byte("\n\n")

// Buffer accumulates raw stream bytes and yields complete event blocks.
// Chunk boundaries do not matter: a block is only released once its
// terminating blank line has arrived. Not safe for concurrent use.
type Buffer struct {
	buf []byte
}

// Write appends a chunk. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Next splits off the text before the first blank line. It returns false
// when no complete block is buffered yet.
func (b *Buffer) Next() (string, bool) {
	i := bytes.Index(b.buf, blockSeparator)
	if i < 0 {
		return "", false
	}
	block := string(b.buf[:i])
	b.buf = b.buf[i+len(blockSeparator):]
	return block, true
}

// Len returns the number of buffered bytes not yet released.
func (b *Buffer) Len() int { return len(b.buf) }

// Reset drops any partial block.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }
