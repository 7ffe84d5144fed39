package mms

import "testing"

func TestClassifyPDUConfirmedResponse(t *testing.T) {
	// 61 30 02 01 03 a1 ... — a confirmed-Response.
	pdu := []byte{0x61, 0x08, 0x30, 0x06, 0x02, 0x01, 0x03, 0xa1, 0x01, 0x00}
	if got := ClassifyPDU(pdu); got != PDUConfirmedResponse {
		t.Fatalf("ClassifyPDU = %v, want PDUConfirmedResponse", got)
	}
}

func TestClassifyPDUUnconfirmedInformationReport(t *testing.T) {
	// a0 wraps an a3 (unconfirmed-PDU) inner TLV.
	inner := []byte{0xa3, 0x02, 0x00, 0x00}
	seq := append([]byte{0x02, 0x01, 0x03}, byte(0xa0), byte(len(inner)))
	seq = append(seq, inner...)
	pdu := append([]byte{0x61, byte(len(seq) + 2), 0x30, byte(len(seq))}, seq...)

	if got := ClassifyPDU(pdu); got != PDUUnconfirmed {
		t.Fatalf("ClassifyPDU = %v, want PDUUnconfirmed", got)
	}
}

func TestClassifyPDUUnknownTagIsNotFatal(t *testing.T) {
	pdu := []byte{0x61, 0x06, 0x30, 0x04, 0x02, 0x01, 0x03, 0x9f}
	if got := ClassifyPDU(pdu); got != PDUUnknown {
		t.Fatalf("ClassifyPDU = %v, want PDUUnknown", got)
	}
}

func TestClassifyPDUMissingEnvelopeIsNotFatal(t *testing.T) {
	if got := ClassifyPDU([]byte{0x30, 0x02, 0x00, 0x00}); got != PDUUnknown {
		t.Fatalf("ClassifyPDU = %v, want PDUUnknown", got)
	}
}

func TestClassifyPDUListWithoutUnconfirmedTagIsUnknown(t *testing.T) {
	// a0 wraps something that is NOT an a3 — not an informationReport.
	inner := []byte{0x85, 0x01, 0x00}
	seq := append([]byte{0x02, 0x01, 0x03}, byte(0xa0), byte(len(inner)))
	seq = append(seq, inner...)
	pdu := append([]byte{0x61, byte(len(seq) + 2), 0x30, byte(len(seq))}, seq...)

	if got := ClassifyPDU(pdu); got != PDUUnknown {
		t.Fatalf("ClassifyPDU = %v, want PDUUnknown", got)
	}
}
