package mms

import (
	"fmt"

	"github.com/slonegd/go61850report/ber"
	"github.com/slonegd/go61850report/osi/acse"
	"github.com/slonegd/go61850report/osi/presentation"
	"github.com/slonegd/go61850report/osi/session"
)

// BuildInitiateEnvelope composes the one-time association-establishment
// PDU sent as the very first COTP Data TPDU: the MMS InitiateRequestPDU
// wrapped in ACSE AARQ, Presentation CP-type, and Session CONNECT SPDU,
// in that order. Unlike every later PDU, this one does NOT carry the
// lightweight `01 00 01 00` prefix — it IS the session/presentation/ACSE
// layer, reproduced in full because the target IED expects it on the
// wire exactly once, at connection time.
func BuildInitiateEnvelope(req *InitiateRequest) []byte {
	mmsInitiate := req.Bytes()
	aarq := acse.BuildAARQ(mmsInitiate)
	cpType := presentation.BuildCPType(aarq)
	return session.BuildConnectSPDU(cpType)
}

// ExtractInitiateResponse peels the Session ACCEPT SPDU / Presentation
// CPA-PPDU / ACSE AARE envelope around an inbound Initiate response and
// parses the InitiateResponsePDU (tag 0xA9) inside it. This module
// doesn't carry dedicated Session/Presentation/ACSE response parsers —
// deliberately: those layers are fixed and only ever appear around this
// one handshake PDU, so a generic tag search is simpler and just as
// correct as reconstructing per-layer decoders that would otherwise go
// unused for the rest of a session's lifetime.
func ExtractInitiateResponse(envelope []byte) (*InitiateResponse, error) {
	payload, ok := ber.FindFirstTag(envelope, 0xA9)
	if !ok {
		return nil, fmt.Errorf("initiate response: no InitiateResponsePDU (tag 0xa9) found in %d-byte envelope", len(envelope))
	}
	return ParseInitiateResponse(ber.Wrap(0xA9, payload))
}
