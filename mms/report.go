package mms

import (
	"encoding/hex"
	"fmt"

	"github.com/slonegd/go61850report/ber"
)

// MMSReport is the decoded form of an informationReport. Entries holds
// the listOfAccessResult exactly as the wire decoder produced it: each
// element is a ber.KindResult value wrapping the actual Data per
// spec.md §4.3's `{success: value}` list decoding — unwrap with
// ResultValue() to get at the underlying Bool/Uint/VStr/etc. Positions
// 0-7 are the fixed report-header fields per the IEC 61850 positional
// mapping (RptID, OptFlds, SeqNum, TimeOfEntry, DatSet, BufOvfl,
// EntryID, Inclusion); entries from 8 on are data-set member values,
// often repeated as value/quality/timestamp triples.
type MMSReport struct {
	RptID       string
	DataSetName string
	SeqNum      uint64
	TimeOfEntry ber.Data
	BufOvfl     bool
	Entries     []ber.Data
	RawPDU      []byte
	// Degraded is true when the envelope didn't match the expected
	// informationReport shape; Entries then holds a single raw_hex
	// fallback value and the other fields are zero.
	Degraded bool
}

const (
	tagUnconfirmedPDU     = 0xA3
	tagListOfAccessResult = 0xA0
)

// DecodeInformationReport walks the envelope `61·30·02 01 03·a0·a3`,
// enters the unconfirmed-PDU content, skips the variable-list name
// (`a1` "RPT"), enters the `a0` listOfAccessResult, and decodes the
// child Data values there. Any structural mismatch degrades gracefully
// to a single `{raw_hex}` entry rather than returning an error — decode
// failures must never be fatal to the session.
func DecodeInformationReport(pdu []byte) *MMSReport {
	report, ok := tryDecodeInformationReport(pdu)
	if ok {
		report.RawPDU = pdu
		return report
	}
	return &MMSReport{
		Degraded: true,
		RawPDU:   pdu,
		Entries:  []ber.Data{ber.NewVisibleStringData(hex.EncodeToString(pdu))},
	}
}

func tryDecodeInformationReport(pdu []byte) (*MMSReport, bool) {
	app1, ok := findTopLevel(pdu, 0x61)
	if !ok {
		return nil, false
	}
	seq, ok := findTopLevel(app1, 0x30)
	if !ok {
		return nil, false
	}

	// seq = 02 01 03 (version) followed by the unconfirmed-PDU (a0 a3 ...)
	pos := 0
	if len(seq) < 3 || seq[0] != 0x02 {
		return nil, false
	}
	pos = 3 // skip the fixed 02 01 03 version field

	unconfirmedWrapper, rest, ok := nextTLV(seq, pos)
	_ = rest
	if !ok || unconfirmedWrapper.tag != tagListOfAccessResult {
		return nil, false
	}

	infoReport, ok := findTag(unconfirmedWrapper.value, tagUnconfirmedPDU)
	if !ok {
		return nil, false
	}

	// infoReport: a1 "RPT" (variable-access-spec, skipped), then a0 listOfAccessResult
	p := 0
	nameTLV, next, ok := nextTLV(infoReport, p)
	if !ok {
		return nil, false
	}
	p = next
	_ = nameTLV

	resultTLV, _, ok := nextTLV(infoReport, p)
	if !ok || resultTLV.tag != tagListOfAccessResult {
		return nil, false
	}

	entries, err := decodeDataList(resultTLV.value)
	if err != nil || len(entries) < 4 {
		return nil, false
	}

	report := &MMSReport{Entries: entries}
	at := func(i int) ber.Data {
		if i >= len(entries) {
			return ber.Data{}
		}
		return entries[i].ResultValue()
	}
	if v := at(0); v.Kind() == ber.KindVisibleString {
		report.RptID = v.VisibleString()
	}
	if v := at(2); v.Kind() == ber.KindUint {
		report.SeqNum = v.Uint()
	}
	if len(entries) > 3 {
		report.TimeOfEntry = at(3)
	}
	if v := at(4); v.Kind() == ber.KindVisibleString {
		report.DataSetName = v.VisibleString()
	}
	if v := at(5); v.Kind() == ber.KindBool {
		report.BufOvfl = v.Bool()
	}
	return report, true
}

type tlv struct {
	tag   byte
	value []byte
}

// nextTLV decodes one TLV starting at pos in buffer, returning it and
// the position just past it.
func nextTLV(buffer []byte, pos int) (tlv, int, bool) {
	if pos >= len(buffer) {
		return tlv{}, pos, false
	}
	tag := buffer[pos]
	newPos, length, err := ber.DecodeLength(buffer, pos+1, len(buffer))
	if err != nil || newPos+length > len(buffer) {
		return tlv{}, pos, false
	}
	return tlv{tag: tag, value: buffer[newPos : newPos+length]}, newPos + length, true
}

// findTopLevel returns the value of the first top-level TLV in buffer
// tagged target (no descent into children) — used for the rigid
// `61` then `30` envelope prefix, which must appear at depth 0/1.
func findTopLevel(buffer []byte, target byte) ([]byte, bool) {
	item, _, ok := nextTLV(buffer, 0)
	if !ok || item.tag != target {
		return nil, false
	}
	return item.value, true
}

// findTag scans buffer's top-level TLVs (not recursing) for the first
// one tagged target.
func findTag(buffer []byte, target byte) ([]byte, bool) {
	pos := 0
	for pos < len(buffer) {
		item, next, ok := nextTLV(buffer, pos)
		if !ok {
			return nil, false
		}
		if item.tag == target {
			return item.value, true
		}
		pos = next
	}
	return nil, false
}

// decodeDataList decodes listOfAccessResult: repeatedly applies the
// Data decoder, wrapping every decoded value as a success
// ber.KindResult per spec.md §4.3, stopping on decode error or end of
// buffer.
func decodeDataList(buffer []byte) ([]ber.Data, error) {
	var items []ber.Data
	pos := 0
	for pos < len(buffer) {
		item, newPos, err := ber.DecodeData(buffer, pos)
		if err != nil {
			return nil, fmt.Errorf("decode list of access result: %w", err)
		}
		items = append(items, ber.NewSuccessResultData(item))
		pos = newPos
	}
	return items, nil
}
