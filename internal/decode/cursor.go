package decode

import "fmt"

// Cursor is a bounds-checked reader over a byte slice addressing one event's
// body (everything after the fixed EventHeader). It replaces the raw pointer
// arithmetic of the driver-side decoder with safe, explicit reads and
// advances: nothing outside this package sees a raw pointer into the
// kernel-shared ring.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for sequential bounds-checked reads starting at
// offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Remaining reports how many bytes are left unread.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Pos reports the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Peek returns the next n bytes without advancing the cursor. It returns an
// error if fewer than n bytes remain.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, fmt.Errorf("decode: cursor: need %d bytes, have %d", n, c.Remaining())
	}
	return c.buf[c.pos : c.pos+n], nil
}

// Advance skips n bytes. It returns an error if fewer than n bytes remain.
func (c *Cursor) Advance(n int) error {
	if c.Remaining() < n {
		return fmt.Errorf("decode: cursor: advance %d, only %d remain", n, c.Remaining())
	}
	c.pos += n
	return nil
}

// Take returns the next n bytes and advances the cursor past them.
func (c *Cursor) Take(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// ReadUint16 reads a little-endian uint16 and advances the cursor.
func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.Take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}
