package wal

// cursor is an exclusively-owned, mutable view over an immutable byte
// slice. It tracks how much of the slice has been consumed so the log
// writer can fragment a payload across block boundaries without copying it
// up front. Unlike a shared/reference-counted cursor, a cursor is never
// aliased — the writer holds the only handle to it at any time.
type cursor struct {
	data []byte
	pos  int
}

// newCursor returns a cursor positioned at the start of data.
func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// remaining returns the number of unconsumed bytes.
func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

// done reports whether every byte has been consumed.
func (c *cursor) done() bool {
	return c.remaining() == 0
}

// consume returns up to n unconsumed bytes starting at the cursor's
// position and advances the cursor past them. If fewer than n bytes
// remain, it returns all of them.
func (c *cursor) consume(n int) []byte {
	if n > c.remaining() {
		n = c.remaining()
	}
	start := c.pos
	c.pos += n
	return c.data[start:c.pos]
}
