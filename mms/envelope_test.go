package mms

import (
	"bytes"
	"testing"
)

func TestBuildConfirmedRequestStructure(t *testing.T) {
	opBody := []byte{0xA4, 0x02, 0xAA, 0xBB}
	pdu := BuildConfirmedRequest(0x012C, opBody)

	if !bytes.HasPrefix(pdu, Prefix) {
		t.Fatalf("PDU % x does not start with session/presentation prefix % x", pdu, Prefix)
	}

	rest := pdu[len(Prefix):]
	if rest[0] != 0x61 {
		t.Fatalf("PDU body does not start with confirmed-request tag 0x61: % x", rest)
	}

	// Confirmed-request content: 30 <len> 02 01 03 a0 <len> 02 02 01 2c <opBody>
	wantInvokeID := []byte{0x02, 0x02, 0x01, 0x2c}
	if idx := bytes.Index(rest, wantInvokeID); idx == -1 {
		t.Fatalf("PDU % x missing invoke-ID field % x", pdu, wantInvokeID)
	}
	if !bytes.Contains(rest, opBody) {
		t.Fatalf("PDU % x does not embed the operation body % x", pdu, opBody)
	}
	if !bytes.Contains(rest, []byte{0x02, 0x01, 0x03}) {
		t.Fatal("PDU missing the fixed 02 01 03 confirmed-request version field")
	}
}

func TestBuildConfirmedRequestDifferentInvokeIDs(t *testing.T) {
	opBody := []byte{0xA4, 0x00}
	a := BuildConfirmedRequest(1, opBody)
	b := BuildConfirmedRequest(2, opBody)
	if bytes.Equal(a, b) {
		t.Fatal("PDUs built with different invoke-IDs must differ")
	}
}
