package mms

import (
	"bytes"
	"testing"

	"github.com/slonegd/go61850report/ber"
)

func TestEncodeRptEnaTrueProducesExactBytes(t *testing.T) {
	got := EncodeRptEna(true)
	want := []byte{0x83, 0x01, 0x01}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeRptEna(true) = % x, want % x", got, want)
	}
}

func TestEncodeIntgPdMillisProducesExactBytes(t *testing.T) {
	got := EncodeIntgPdMillis(2000)
	want := []byte{0x86, 0x02, 0x07, 0xd0}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeIntgPdMillis(2000) = % x, want % x", got, want)
	}
}

func TestEncodeSetRCBValuesRptEnaValueBlock(t *testing.T) {
	invokeIDs := NewInvokeIDCounter(0x012C)
	pdu := EncodeSetRCBValues(invokeIDs, "VMC7_1LD0", "LLN0$BR$CB_LDPHAS1_CYPO02", AttrRptEna, EncodeRptEna(true))

	want := []byte{0xa0, 0x03, 0x83, 0x01, 0x01}
	if idx := bytes.Index(pdu, want); idx == -1 {
		t.Fatalf("SetRCBValues RptEna PDU % x does not contain expected value block % x", pdu, want)
	}
}

func TestEncodeSetRCBValuesIntgPdValueBlock(t *testing.T) {
	invokeIDs := NewInvokeIDCounter(0x012C)
	pdu := EncodeSetRCBValues(invokeIDs, "VMC7_1LD0", "LLN0$BR$CB_LDPHAS1_CYPO02", AttrIntgPd, EncodeIntgPdMillis(2000))

	want := []byte{0xa0, 0x04, 0x86, 0x02, 0x07, 0xd0}
	if idx := bytes.Index(pdu, want); idx == -1 {
		t.Fatalf("SetRCBValues IntgPd PDU % x does not contain expected value block % x", pdu, want)
	}
}

func TestEncodeSetRCBValuesItemNameIsDollarJoined(t *testing.T) {
	invokeIDs := NewInvokeIDCounter(0x012C)
	pdu := EncodeSetRCBValues(invokeIDs, "VMC7_1LD0", "LLN0$BR$CB_LDPHAS1_CYPO02", AttrGI, EncodeGI(true))

	wantItem := append(ber.EncodeIA5("VMC7_1LD0"), ber.EncodeIA5("LLN0$BR$CB_LDPHAS1_CYPO02$GI")...)
	if !bytes.Contains(pdu, wantItem) {
		t.Fatalf("SetRCBValues PDU does not embed the dollar-joined item name: % x", pdu)
	}
}

func TestEncodeGetRCBValuesHasPrefixAndInvokeID(t *testing.T) {
	invokeIDs := NewInvokeIDCounter(0x012C)
	pdu := EncodeGetRCBValues(invokeIDs, "VMC7_1LD0", "LLN0$BR$CB_LDPHAS1_CYPO02")

	wantPrefix := []byte{0x01, 0x00, 0x01, 0x00, 0x61}
	if !bytes.HasPrefix(pdu, wantPrefix) {
		t.Fatalf("GetRCBValues PDU % x does not start with expected prefix % x", pdu[:min(len(pdu), 10)], wantPrefix)
	}

	wantInvokeSeq := []byte{0x02, 0x01, 0x03, 0xa0}
	if idx := bytes.Index(pdu, wantInvokeSeq); idx == -1 {
		t.Fatalf("GetRCBValues PDU % x missing confirmed-request header % x", pdu, wantInvokeSeq)
	}
	wantInvokeID := []byte{0x02, 0x02, 0x01, 0x2c}
	if idx := bytes.Index(pdu, wantInvokeID); idx == -1 {
		t.Fatalf("GetRCBValues PDU % x missing invoke-ID field % x", pdu, wantInvokeID)
	}
}

func TestEncodeGetRCBValuesEmbedsBothIA5Strings(t *testing.T) {
	invokeIDs := NewInvokeIDCounter(0x012C)
	pdu := EncodeGetRCBValues(invokeIDs, "VMC7_1LD0", "LLN0$BR$CB_LDPHAS1_CYPO02")

	if !bytes.Contains(pdu, ber.EncodeIA5("VMC7_1LD0")) {
		t.Fatalf("GetRCBValues PDU missing domainID IA5 string: % x", pdu)
	}
	if !bytes.Contains(pdu, ber.EncodeIA5("LLN0$BR$CB_LDPHAS1_CYPO02")) {
		t.Fatalf("GetRCBValues PDU missing itemID IA5 string: % x", pdu)
	}
}

func TestEncodeGetRCBValuesConsumesOneInvokeID(t *testing.T) {
	invokeIDs := NewInvokeIDCounter(0x012C)
	first := EncodeGetRCBValues(invokeIDs, "D", "I")
	second := EncodeGetRCBValues(invokeIDs, "D", "I")

	if bytes.Equal(first, second) {
		t.Fatal("two successive GetRCBValues calls produced identical PDUs; invoke-ID must advance")
	}
	if !bytes.Contains(first, []byte{0x02, 0x02, 0x01, 0x2c}) {
		t.Fatalf("first PDU invoke-ID should be 0x012c, got % x", first)
	}
	if !bytes.Contains(second, []byte{0x02, 0x02, 0x01, 0x2d}) {
		t.Fatalf("second PDU invoke-ID should be 0x012d, got % x", second)
	}
}
