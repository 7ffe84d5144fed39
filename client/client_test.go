package client

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/slonegd/go61850report/cotp"
	"github.com/slonegd/go61850report/mms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIED is the peer side of a net.Pipe connection standing in for a
// real IED. These tests wire a Session directly to an already-"connected"
// cotp.Connection (skipping the CR/CC handshake, covered separately by
// cotp_test.go) to exercise Exchange/LoopReports' demux and heartbeat
// behavior in isolation.
type fakeIED struct {
	conn net.Conn
}

func dialFakeIED(t *testing.T) (*Session, *fakeIED) {
	t.Helper()
	client, server := net.Pipe()
	s := New(WithHeartbeat(200 * time.Millisecond))
	s.conn = client
	s.cotpConn = cotp.NewConnection(client, nil)
	return s, &fakeIED{conn: server}
}

func TestSessionStateStringer(t *testing.T) {
	assert.Equal(t, "Closed", StateClosed.String())
	assert.Equal(t, "Subscribed", StateSubscribed.String())
}

func TestNewAssignsDistinctCorrelationIDs(t *testing.T) {
	a := New()
	b := New()
	assert.NotEmpty(t, a.CorrelationID())
	assert.NotEqual(t, a.CorrelationID(), b.CorrelationID())
}

func TestExchangeReturnsConfirmedResponseAndForwardsReportsInBetween(t *testing.T) {
	s, ied := dialFakeIED(t)
	defer ied.conn.Close()
	defer s.Close()

	// 61·30·02 01 03·a0[a3[a1("RPT") a0(5 Data entries)]] — a full
	// informationReport envelope, so DecodeInformationReport succeeds
	// (not the raw-hex degraded fallback) and the callback fires.
	report := []byte{
		0x61, 0x28,
		0x30, 0x26,
		0x02, 0x01, 0x03,
		0xa0, 0x21,
		0xa3, 0x1f,
		0xa1, 0x03, 0x8a, 0x01, 0x58,
		0xa0, 0x18,
		0x8a, 0x04, 0x52, 0x50, 0x54, 0x31, // RptID "RPT1"
		0x84, 0x02, 0x00, 0x0c, // TrgOps-shaped bit-string filler
		0x85, 0x01, 0x05, // SeqNum 5
		0x8c, 0x04, 0x5a, 0x9b, 0xe4, 0x00, // TimeOfEntry
		0x8a, 0x03, 0x44, 0x53, 0x31, // DataSetName "DS1"
	}
	// 61·30·02 01 03·a1(confirmed-response body)
	confirmedResponse := []byte{
		0x61, 0x0a,
		0x30, 0x08,
		0x02, 0x01, 0x03,
		0xa1, 0x03, 0x02, 0x01, 0x01,
	}

	var received []*mms.MMSReport
	s.reportCallback = func(r *mms.MMSReport) { received = append(received, r) }

	// Drain the request Exchange sends: net.Pipe is unbuffered, so its
	// Send would otherwise block while the fake IED is itself writing.
	go func() { _, _ = io.Copy(io.Discard, ied.conn) }()

	done := make(chan error, 1)
	go func() {
		_, err := s.Exchange(context.Background(), []byte{0x01, 0x02})
		done <- err
	}()

	sendCOTPFrame(t, ied.conn, report)
	sendCOTPFrame(t, ied.conn, confirmedResponse)

	require.NoError(t, <-done)
	require.Len(t, received, 1)
	assert.Equal(t, "RPT1", received[0].RptID)
	assert.Equal(t, uint64(5), received[0].SeqNum)
	assert.Equal(t, "DS1", received[0].DataSetName)
	assert.False(t, received[0].Degraded)
}

func TestLoopReportsStopsOnStopFlag(t *testing.T) {
	s, ied := dialFakeIED(t)
	defer ied.conn.Close()
	defer s.Close()
	s.Stop()

	err := s.LoopReports(context.Background(), func(*mms.MMSReport) {})
	require.NoError(t, err)
}

func TestLoopReportsReturnsNilOnEOF(t *testing.T) {
	s, ied := dialFakeIED(t)
	ied.conn.Close()

	err := s.LoopReports(context.Background(), func(*mms.MMSReport) {})
	require.NoError(t, err)
}

// sendCOTPFrame writes payload as a TPKT-framed COTP Data TPDU,
// blocking until the reader on the other end of conn has consumed it.
func sendCOTPFrame(t *testing.T, conn net.Conn, payload []byte) {
	t.Helper()
	tpdu := append([]byte{0x02, 0xf0, 0x80}, payload...)
	var header [4]byte
	length := 4 + len(tpdu)
	header[0] = 0x03
	header[1] = 0x00
	header[2] = byte(length >> 8)
	header[3] = byte(length)
	_, err := conn.Write(header[:])
	require.NoError(t, err)
	_, err = conn.Write(tpdu)
	require.NoError(t, err)
}
