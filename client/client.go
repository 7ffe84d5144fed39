// Package client implements the session/reports client: the state
// machine that owns one TCP connection end to end, from COTP connect
// through MMS Initiate, RCB activation, and the steady-state report
// receive loop. Adapted from the teacher's go61850.go MmsClient, but
// generalized from its single Initiate-then-stop shape into the full
// connect/activate/loop/close lifecycle, grounded on
// original_source/mms_reports_client.py's equivalent driver loop.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/slonegd/go61850report/cotp"
	"github.com/slonegd/go61850report/internal/diagnostics"
	"github.com/slonegd/go61850report/internal/errs"
	"github.com/slonegd/go61850report/internal/logging"
	"github.com/slonegd/go61850report/mms"
	"github.com/slonegd/go61850report/rcb"
)

// State names the session's position in the
// Closed -> TcpOpen -> COTPConnected -> MMSReady -> Subscribed lifecycle.
type State int

const (
	StateClosed State = iota
	StateTcpOpen
	StateCOTPConnected
	StateMMSReady
	StateSubscribed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateTcpOpen:
		return "TcpOpen"
	case StateCOTPConnected:
		return "COTPConnected"
	case StateMMSReady:
		return "MMSReady"
	case StateSubscribed:
		return "Subscribed"
	default:
		return "Unknown"
	}
}

// DefaultHeartbeat is the per-read idle timeout: on expiry the client
// logs an idle line and resumes reading rather than treating the
// timeout as an error.
const DefaultHeartbeat = 60 * time.Second

// ReportCallback receives each successfully decoded informationReport.
// The degraded (raw-hex fallback) case never reaches the callback —
// spec.md §4.6 only forwards reports whose envelope was recognized.
type ReportCallback func(*mms.MMSReport)

// Session is a single Class 0 COTP / MMS connection to one IED. Not
// safe for concurrent use: every operation serializes through the one
// read/write path, matching the single-threaded cooperative scheduling
// model. Multiple Sessions may run concurrently in independent
// goroutines against different IEDs.
type Session struct {
	conn      net.Conn
	cotpConn  *cotp.Connection
	invokeIDs *mms.InvokeIDCounter
	logger    logging.Logger
	state     State
	heartbeat time.Duration
	dialer    net.Dialer

	invokeIDBase uint16

	reportCallback ReportCallback
	stop           atomic.Bool

	correlationID string
	tcpInfo       *diagnostics.TCPInfoCollector
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithLogger sets the Session's logger. The default is a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithHeartbeat overrides the per-read idle timeout.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Session) { s.heartbeat = d }
}

// WithInvokeIDBase overrides the invoke-ID counter's reset base.
// DefaultInvokeIDBase is used otherwise.
func WithInvokeIDBase(base uint16) Option {
	return func(s *Session) {
		s.invokeIDBase = base
		s.invokeIDs = mms.NewInvokeIDCounter(base)
	}
}

// WithDiagnostics registers the Session's TCP connection with collector
// under a fresh xid correlation ID as soon as Connect succeeds, and
// removes it again on Close. Passing a nil collector is a no-op, so
// callers who didn't start a diagnostics server don't need a guard.
func WithDiagnostics(collector *diagnostics.TCPInfoCollector) Option {
	return func(s *Session) { s.tcpInfo = collector }
}

// New returns a Session in state Closed, ready for Connect.
func New(opts ...Option) *Session {
	s := &Session{
		logger:        logging.NewNoop(),
		invokeIDs:     mms.NewInvokeIDCounter(mms.DefaultInvokeIDBase),
		invokeIDBase:  mms.DefaultInvokeIDBase,
		heartbeat:     DefaultHeartbeat,
		state:         StateClosed,
		correlationID: xid.New().String(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithCorrelationID(s.logger, s.correlationID)
	return s
}

// CorrelationID returns the xid assigned to this Session at
// construction, used to tie its diagnostics gauges and log lines
// together.
func (s *Session) CorrelationID() string { return s.correlationID }

// State returns the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// Connect dials host:port, runs the COTP CR/CC handshake, sends the MMS
// Initiate request, and awaits its response. The response PDU is opaque
// to the caller — logged at debug level only — per spec.md §4.6; its
// only observable effect is the invoke-ID counter reset and the
// transition to MMSReady.
func (s *Session) Connect(ctx context.Context, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &errs.TransportError{Op: "dial " + addr, Err: err}
	}
	s.conn = conn
	s.state = StateTcpOpen
	if s.tcpInfo != nil {
		s.tcpInfo.Add(conn, s.correlationID)
	}

	s.cotpConn = cotp.NewConnection(conn, s.logger)
	if err := s.cotpConn.Connect(ctx, cotp.DefaultConnectionParameters()); err != nil {
		s.closeConn()
		return err
	}
	s.state = StateCOTPConnected

	s.invokeIDs.Reset(s.invokeIDBase)
	envelope := mms.BuildInitiateEnvelope(mms.NewInitiateRequest())
	if err := s.cotpConn.Send(envelope); err != nil {
		s.closeConn()
		return &errs.InitiateError{Err: err}
	}

	payload, err := s.cotpConn.Recv(ctx)
	if err != nil {
		s.closeConn()
		return &errs.InitiateError{Err: err}
	}

	response, err := mms.ExtractInitiateResponse(payload)
	if err != nil {
		s.closeConn()
		return &errs.InitiateError{Err: err}
	}
	s.logger.Debug("mms: initiate response: %+v", response)

	s.state = StateMMSReady
	return nil
}

// EnableReporting runs the fixed 8-step RCB activation sequence against
// (domainID, itemID), writing rptEna and intgPdMs along with the
// remaining default attribute values. May be called repeatedly for
// multiple RCBs on the same session.
func (s *Session) EnableReporting(ctx context.Context, domainID, itemID string, rptEna bool, intgPdMs uint64) error {
	opts := rcb.DefaultActivationOptions(domainID, itemID)
	opts.RptEna = rptEna
	opts.IntgPdMillis = intgPdMs
	opts.ProbeFirst = true

	if err := rcb.Activate(ctx, s, s.invokeIDs, opts, s.logger); err != nil {
		return err
	}
	s.state = StateSubscribed
	return nil
}

// GetRCBValues sends a bare GetRCBValues probe for (domainID, itemID)
// and decodes its response, without writing anything. Used by the CLI's
// get-rcb subcommand.
func (s *Session) GetRCBValues(ctx context.Context, domainID, itemID string) (rcb.ProbedRCBValues, error) {
	return rcb.Probe(ctx, s, s.invokeIDs, domainID, itemID)
}

// Exchange implements rcb.Exchanger: it sends a confirmed request and
// blocks until the matching confirmed response arrives, forwarding any
// informationReport that arrives first to the report callback (if one
// has been installed by a prior LoopReports call).
func (s *Session) Exchange(ctx context.Context, pdu []byte) ([]byte, error) {
	if err := s.cotpConn.Send(pdu); err != nil {
		return nil, &errs.TransportError{Op: "send confirmed request", Err: err}
	}
	for {
		payload, err := s.recvWithHeartbeat(ctx)
		if err != nil {
			var timeout *errs.TimeoutError
			if errors.As(err, &timeout) {
				continue // heartbeat timeout, keep waiting for the response
			}
			return nil, err
		}
		switch mms.ClassifyPDU(payload) {
		case mms.PDUConfirmedResponse:
			return payload, nil
		case mms.PDUUnconfirmed:
			s.dispatchReport(payload)
		default:
			s.logger.Warn("client: unrecognized PDU while awaiting response, skipping")
		}
	}
}

// LoopReports blocks, reading PDUs and invoking callback for each
// decoded informationReport, until EOF, a fatal error, or Stop is
// called. A confirmed-Response arriving here (outside of an Exchange
// call) is logged and ignored — it cannot correspond to any pending
// request once Exchange has returned.
func (s *Session) LoopReports(ctx context.Context, callback ReportCallback) error {
	s.reportCallback = callback
	for {
		if s.stop.Load() {
			return nil
		}
		payload, err := s.recvWithHeartbeat(ctx)
		if err != nil {
			var timeout *errs.TimeoutError
			if errors.As(err, &timeout) {
				continue // heartbeat timeout
			}
			if errors.Is(err, errEOF) {
				return nil
			}
			return err
		}
		switch mms.ClassifyPDU(payload) {
		case mms.PDUUnconfirmed:
			s.dispatchReport(payload)
		case mms.PDUConfirmedResponse:
			s.logger.Warn("client: confirmed response received outside Exchange, ignoring")
		default:
			s.logger.Warn("client: unrecognized PDU in report loop, skipping")
		}
	}
}

// Stop requests LoopReports return after its current PDU or heartbeat
// tick. Safe to call from another goroutine.
func (s *Session) Stop() { s.stop.Store(true) }

// Close releases the TCP socket. Safe to call more than once.
func (s *Session) Close() error {
	s.state = StateClosed
	return s.closeConn()
}

func (s *Session) closeConn() error {
	if s.conn == nil {
		return nil
	}
	if s.tcpInfo != nil {
		s.tcpInfo.Remove(s.conn)
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Session) dispatchReport(payload []byte) {
	report := mms.DecodeInformationReport(payload)
	if report.Degraded {
		s.logger.Warn("client: report envelope not recognized, dropping (%d bytes)", len(payload))
		return
	}
	if s.reportCallback != nil {
		s.reportCallback(report)
	}
}

// errEOF is a sentinel recvWithHeartbeat wraps io.EOF as, so callers can
// use errors.Is without importing io just for this check.
var errEOF = errors.New("client: connection closed by peer")

// recvWithHeartbeat reads one PDU with a per-read deadline of
// s.heartbeat. On deadline expiry it logs an idle line and returns an
// *errs.TimeoutError so the caller's loop can recognize it with
// errors.As, re-check its own stop condition, and try again; on clean
// EOF it returns errEOF; any other error is returned as-is (already a
// typed *errs.* error from cotp/tpkt).
func (s *Session) recvWithHeartbeat(ctx context.Context) ([]byte, error) {
	readCtx, cancel := context.WithTimeout(ctx, s.heartbeat)
	defer cancel()

	payload, err := s.cotpConn.Recv(readCtx)
	if err == nil {
		return payload, nil
	}
	if isDeadlineExceeded(err) {
		s.logger.Debug("client: idle, no PDU in %s", s.heartbeat)
		return nil, &errs.TimeoutError{Err: err}
	}
	if errors.Is(err, io.EOF) {
		return nil, errEOF
	}
	return nil, err
}

func isDeadlineExceeded(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
