// Package tpkt implements the RFC 1006 TPKT framer: the 4-byte
// version/reserved/length header that carries an ISO transport PDU over
// a TCP byte stream. It is split out of the COTP driver so the framing
// concern (where does one PDU end) and the COTP concern (what a Class 0
// TPDU looks like) can be tested and reasoned about independently, the
// way a from-scratch TPKT implementation would be grounded on
// the teacher's cotp.Connection incremental reader but without
// conflating the two layers.
package tpkt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	version        = 0x03
	headerSize     = 4
	// MaxLength is the largest TPKT length field this framer accepts.
	// RFC 1006 allows up to 0xFFFF, but conservatively we refuse packets
	// that would leave no room for the framer itself to have sent a
	// completing header; 0xFFFB mirrors the 4-byte header reservation.
	MaxLength = 0xFFFB
)

// Overflow reports a TPKT length field that exceeds MaxLength.
type Overflow struct {
	Length int
}

func (e *Overflow) Error() string {
	return fmt.Sprintf("tpkt: length %d exceeds maximum %d", e.Length, MaxLength)
}

// Truncated reports a connection that closed mid-frame: after at least
// one header byte was read, but before a complete frame arrived. This is
// distinct from a clean EOF seen before any byte of a new frame.
type Truncated struct {
	Got  int
	Want int
}

func (e *Truncated) Error() string {
	return fmt.Sprintf("tpkt: truncated frame: got %d of %d bytes", e.Got, e.Want)
}

// Framer reads and writes TPKT frames over an underlying stream
// connection. It is not safe for concurrent use by multiple goroutines;
// the session/reports client above it runs a single-threaded read loop,
// consistent with the concurrency model the protocol stack assumes.
type Framer struct {
	conn net.Conn
}

// New wraps conn in a Framer.
func New(conn net.Conn) *Framer {
	return &Framer{conn: conn}
}

// Send writes payload as a single TPKT frame.
func (f *Framer) Send(payload []byte) error {
	length := headerSize + len(payload)
	if length > 0xFFFF {
		return &Overflow{Length: length}
	}
	header := [headerSize]byte{version, 0x00, byte(length >> 8), byte(length & 0xFF)}
	if _, err := f.conn.Write(header[:]); err != nil {
		return fmt.Errorf("tpkt: write header: %w", err)
	}
	if _, err := f.conn.Write(payload); err != nil {
		return fmt.Errorf("tpkt: write payload: %w", err)
	}
	return nil
}

// Recv reads one TPKT frame and returns its payload (the bytes after the
// 4-byte header). It returns io.EOF, unwrapped, when the peer closed the
// connection cleanly before any byte of a new frame arrived — the
// caller's read loop is expected to treat that as an ordinary end of
// stream, not a failure. Any other short read, or a context
// cancellation/deadline once a frame is in progress, is reported as a
// wrapped error the caller should treat as fatal for the session.
func (f *Framer) Recv(ctx context.Context) ([]byte, error) {
	header := make([]byte, headerSize)
	if err := f.readFull(ctx, header, 0); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	if header[0] != version {
		return nil, fmt.Errorf("tpkt: unexpected version byte 0x%02x", header[0])
	}
	if header[1] != 0x00 {
		return nil, fmt.Errorf("tpkt: unexpected reserved byte 0x%02x", header[1])
	}

	length := int(header[2])<<8 | int(header[3])
	if length < headerSize {
		return nil, fmt.Errorf("tpkt: length field %d smaller than header", length)
	}
	if length > MaxLength {
		return nil, &Overflow{Length: length}
	}

	payload := make([]byte, length-headerSize)
	if len(payload) == 0 {
		return payload, nil
	}
	if err := f.readFull(ctx, payload, headerSize); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Truncated{Got: headerSize, Want: length}
		}
		return nil, err
	}
	return payload, nil
}

// readFull reads len(buf) bytes, treating an EOF with zero bytes read as
// io.EOF (propagated) and any other short read as Truncated — alreadyRead
// is only used to build an accurate Truncated error.
func (f *Framer) readFull(ctx context.Context, buf []byte, alreadyRead int) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = f.conn.SetReadDeadline(deadline)
	} else {
		_ = f.conn.SetReadDeadline(time.Time{})
	}

	n, err := io.ReadFull(f.conn, buf)
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) || (errors.Is(err, io.EOF) && n > 0) {
			return &Truncated{Got: alreadyRead + n, Want: alreadyRead + len(buf)}
		}
		return fmt.Errorf("tpkt: read: %w", err)
	}
	return nil
}
