// Package cotp implements the ISO-8073 COTP Class 0 driver that rides on
// top of tpkt.Framer. It replaces the teacher's conflated TPKT+COTP
// implementation (osi/cotp/cotp.go) with a layered pair: this package
// now only knows about TPDU shapes (CR/CC/DT), while tpkt owns framing.
// Class 0 is unsegmented at this layer — each DT TPDU carries one
// complete ISO payload; fragmentation, if ever needed, is a TPKT/TCP
// concern, not this driver's.
package cotp

import (
	"context"
	"fmt"
	"net"

	"github.com/slonegd/go61850report/internal/errs"
	"github.com/slonegd/go61850report/internal/logging"
	"github.com/slonegd/go61850report/tpkt"
)

const (
	typeCR     = 0xE0
	typeCC     = 0xD0
	typeDT     = 0xF0
	dtControl  = 0x80
	dtLI       = 0x02
	paramTSize = 0xC0
	paramTSAPCalled  = 0xC2
	paramTSAPCalling = 0xC1
)

// ConnectionParameters configures an outbound Connection Request. The
// defaults match the 18-byte CR captured in working traces: both TSAPs
// 0x0001, src_ref 0x0001, dst_ref 0x0000, a 1024-octet TPDU size (the
// 0x0A size-exponent byte).
type ConnectionParameters struct {
	SrcRef      uint16
	DstRef      uint16
	TpduSize    byte
	CalledTSAP  uint16
	CallingTSAP uint16
}

// DefaultConnectionParameters returns the parameter set that reproduces
// the canonical 18-byte CR TPDU.
func DefaultConnectionParameters() ConnectionParameters {
	return ConnectionParameters{
		SrcRef:      0x0001,
		DstRef:      0x0000,
		TpduSize:    0x0A,
		CalledTSAP:  0x0001,
		CallingTSAP: 0x0001,
	}
}

// Connection is a single Class 0 COTP connection over one TCP socket.
// Not safe for concurrent use — the session above it drives one I/O
// path at a time.
type Connection struct {
	framer    *tpkt.Framer
	logger    logging.Logger
	remoteRef uint16
	localRef  uint16
}

// NewConnection wraps conn in a Connection. logger may be nil, in which
// case a no-op logger is used.
func NewConnection(conn net.Conn, logger logging.Logger) *Connection {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Connection{framer: tpkt.New(conn), logger: logger}
}

// GetRemoteRef returns the destination reference learned from the CC
// TPDU (0 until the connect handshake completes).
func (c *Connection) GetRemoteRef() uint16 { return c.remoteRef }

// GetLocalRef returns this side's source reference.
func (c *Connection) GetLocalRef() uint16 { return c.localRef }

func buildCR(params ConnectionParameters) []byte {
	body := make([]byte, 0, 17)
	body = append(body, typeCR)
	body = append(body, byte(params.DstRef>>8), byte(params.DstRef))
	body = append(body, byte(params.SrcRef>>8), byte(params.SrcRef))
	body = append(body, 0x00) // class 0, no additional options
	body = append(body, paramTSize, 0x01, params.TpduSize)
	body = append(body, paramTSAPCalled, 0x02, byte(params.CalledTSAP>>8), byte(params.CalledTSAP))
	body = append(body, paramTSAPCalling, 0x02, byte(params.CallingTSAP>>8), byte(params.CallingTSAP))
	tpdu := make([]byte, 0, len(body)+1)
	tpdu = append(tpdu, byte(len(body)))
	tpdu = append(tpdu, body...)
	return tpdu
}

// Connect sends a Connection Request and waits for the Connection
// Confirm, validating its type. Any other TPDU type is a *errs.COTPError.
func (c *Connection) Connect(ctx context.Context, params ConnectionParameters) error {
	c.localRef = params.SrcRef
	cr := buildCR(params)
	c.logger.Debug("cotp: sending CR (% x)", cr)
	if err := c.framer.Send(cr); err != nil {
		return &errs.TransportError{Op: "send CR", Err: err}
	}

	payload, err := c.framer.Recv(ctx)
	if err != nil {
		return &errs.TransportError{Op: "recv CC", Err: err}
	}
	return c.parseCC(payload)
}

func (c *Connection) parseCC(tpdu []byte) error {
	if len(tpdu) < 2 {
		return &errs.COTPError{Op: "parse CC", Err: fmt.Errorf("tpdu too short: %d bytes", len(tpdu))}
	}
	li := int(tpdu[0])
	if li+1 > len(tpdu) {
		return &errs.COTPError{Op: "parse CC", Err: fmt.Errorf("LI %d exceeds tpdu length %d", li, len(tpdu))}
	}
	if tpdu[1] != typeCC {
		return &errs.COTPError{Op: "parse CC", Err: fmt.Errorf("unexpected TPDU type 0x%02x", tpdu[1])}
	}
	if li >= 4 {
		c.remoteRef = uint16(tpdu[2])<<8 | uint16(tpdu[3])
	}
	c.logger.Debug("cotp: CC accepted, remote_ref=0x%04x", c.remoteRef)
	return nil
}

// Accept responds to an inbound Connection Request with a Connection
// Confirm, for the (optional) listener side of the stack.
func (c *Connection) Accept(ctx context.Context, crTPDU []byte, params ConnectionParameters) error {
	if len(crTPDU) < 2 || crTPDU[1] != typeCR {
		return &errs.COTPError{Op: "accept", Err: fmt.Errorf("not a CR tpdu")}
	}
	c.localRef = params.SrcRef
	if len(crTPDU) >= 6 {
		c.remoteRef = uint16(crTPDU[4])<<8 | uint16(crTPDU[5])
	}
	body := make([]byte, 0, 7)
	body = append(body, typeCC)
	body = append(body, byte(params.DstRef>>8), byte(params.DstRef))
	body = append(body, byte(params.SrcRef>>8), byte(params.SrcRef))
	body = append(body, 0x00)
	tpdu := make([]byte, 0, len(body)+1)
	tpdu = append(tpdu, byte(len(body)))
	tpdu = append(tpdu, body...)
	if err := c.framer.Send(tpdu); err != nil {
		return &errs.TransportError{Op: "send CC", Err: err}
	}
	return nil
}

// Send wraps payload in a single Data TPDU and transmits it. Class 0 is
// unsegmented at this layer: the whole payload rides in one DT, however
// large; tpkt.Framer rejects anything beyond its own Overflow limit.
func (c *Connection) Send(payload []byte) error {
	tpdu := make([]byte, 0, 3+len(payload))
	tpdu = append(tpdu, dtLI, typeDT, dtControl)
	tpdu = append(tpdu, payload...)
	if err := c.framer.Send(tpdu); err != nil {
		return &errs.TransportError{Op: "send DT", Err: err}
	}
	return nil
}

// Recv reads TPDUs until a Data TPDU arrives, silently skipping any
// other TPDU type (CR/CC/DR/...), and returns its user data. It returns
// io.EOF, unwrapped, when the peer closes the connection cleanly.
func (c *Connection) Recv(ctx context.Context) ([]byte, error) {
	for {
		payload, err := c.framer.Recv(ctx)
		if err != nil {
			return nil, err
		}
		if len(payload) < 3 {
			c.logger.Warn("cotp: short tpdu (%d bytes), skipping", len(payload))
			continue
		}
		if payload[1] != typeDT {
			c.logger.Debug("cotp: skipping non-DT tpdu type 0x%02x", payload[1])
			continue
		}
		return payload[3:], nil
	}
}
