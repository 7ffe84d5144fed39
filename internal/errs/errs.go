// Package errs defines the distinct error types the error handling
// design separates into fatal ("close the session") and recoverable
// ("log and continue") categories, so callers can distinguish them with
// errors.As instead of string-matching or a single generic error type.
package errs

import "fmt"

// TransportError wraps a TCP open/read/write failure, or an EOF
// encountered where none was expected (e.g. mid-sequence during
// SetRCBValues). Fatal: closes the session.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// FramingError wraps a bad TPKT version/reserved byte, or a truncated
// TPKT payload. Fatal: closes the session.
type FramingError struct {
	Err error
}

func (e *FramingError) Error() string { return fmt.Sprintf("framing: %v", e.Err) }
func (e *FramingError) Unwrap() error { return e.Err }

// COTPError wraps an unexpected TPDU type during the CR/CC exchange, or
// a length inconsistency in a COTP TPDU. Fatal: closes the session.
type COTPError struct {
	Op  string
	Err error
}

func (e *COTPError) Error() string { return fmt.Sprintf("cotp: %s: %v", e.Op, e.Err) }
func (e *COTPError) Unwrap() error { return e.Err }

// InitiateError wraps EOF or truncation encountered while awaiting the
// MMS Initiate response. Fatal: closes the session.
type InitiateError struct {
	Err error
}

func (e *InitiateError) Error() string { return fmt.Sprintf("mms initiate: %v", e.Err) }
func (e *InitiateError) Unwrap() error { return e.Err }

// DecodeWarning reports an unexpected tag or truncated structure
// encountered while decoding a report. Recoverable: the affected value
// is downgraded to a raw-hex fallback and the session stays alive.
type DecodeWarning struct {
	Context string
	Err     error
}

func (e *DecodeWarning) Error() string { return fmt.Sprintf("decode warning in %s: %v", e.Context, e.Err) }
func (e *DecodeWarning) Unwrap() error { return e.Err }

// ProtocolMismatch reports a Set/Get response whose shape did not match
// a confirmed-response PDU. Recoverable: logged, the offending PDU is
// skipped, the read loop continues.
type ProtocolMismatch struct {
	Expected string
	Got      string
}

func (e *ProtocolMismatch) Error() string {
	return fmt.Sprintf("protocol mismatch: expected %s, got %s", e.Expected, e.Got)
}

// TimeoutError reports a read timeout. Non-fatal: the caller retries.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("timeout: %v", e.Err) }
func (e *TimeoutError) Unwrap() error { return e.Err }
