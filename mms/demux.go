package mms

// PDUKind classifies a decoded top-level PDU so the session/reports
// client can demultiplex without fully decoding either shape: a
// confirmed-Response terminates an outstanding Set/GetRCBValues wait, an
// unconfirmed-PDU (informationReport) is handed to the report callback.
type PDUKind int

const (
	PDUUnknown PDUKind = iota
	PDUConfirmedResponse
	PDUUnconfirmed
)

const tagConfirmedResponse = 0xA1

// ClassifyPDU peeks the envelope `61·30·02 01 03·<tag>` without
// decoding the PDU body: tag 0xa1 is a confirmed-Response, tag 0xa0
// (followed by 0xa3, an unconfirmed-PDU informationReport) is an
// unconfirmed PDU. Anything else is PDUUnknown, which the client logs
// and skips rather than treating as fatal.
func ClassifyPDU(payload []byte) PDUKind {
	app1, ok := findTopLevel(payload, 0x61)
	if !ok {
		return PDUUnknown
	}
	seq, ok := findTopLevel(app1, 0x30)
	if !ok {
		return PDUUnknown
	}
	if len(seq) < 3 || seq[0] != 0x02 {
		return PDUUnknown
	}
	item, _, ok := nextTLV(seq, 3)
	if !ok {
		return PDUUnknown
	}
	switch item.tag {
	case tagConfirmedResponse:
		return PDUConfirmedResponse
	case tagListOfAccessResult:
		if _, ok := findTag(item.value, tagUnconfirmedPDU); ok {
			return PDUUnconfirmed
		}
		return PDUUnknown
	default:
		return PDUUnknown
	}
}
