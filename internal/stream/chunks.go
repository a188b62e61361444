// Package stream handles the fragment side of a DeepWiki answer: reading
// raw chunks off a streamed HTTP body, interpreting each chunk, and either
// aggregating them into one answer or relaying them live to a caller.
package stream

import "io"

// chunkBufSize is the read buffer for one transport chunk. The upstream
// streams arbitrary-sized text fragments; 32 KiB comfortably holds any
// single write the transport delivers at once.
const chunkBufSize = 32 * 1024

// ChunkReader yields text chunks exactly as the transport delivers them,
// preserving arrival order. It adds no framing and no buffering beyond the
// single read buffer: a chunk is whatever one Read returned.
type ChunkReader struct {
	r   io.Reader
	buf []byte
	err error // deferred error after a short read delivered data
}

// NewChunkReader wraps a streamed response body.
func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{r: r, buf: make([]byte, chunkBufSize)}
}

// Next returns the next non-empty chunk. It returns io.EOF when the
// upstream closed the stream normally, and any other error when the
// stream terminated abnormally mid-read.
func (c *ChunkReader) Next() (string, error) {
	if c.err != nil {
		err := c.err
		c.err = nil
		return "", err
	}
	for {
		n, err := c.r.Read(c.buf)
		if n > 0 {
			if err != nil {
				// Deliver the final bytes now; report the error on the next call.
				c.err = err
			}
			return string(c.buf[:n]), nil
		}
		if err != nil {
			return "", err
		}
	}
}
