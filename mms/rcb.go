package mms

import "github.com/slonegd/go61850report/ber"

// Attribute names the eight Report Control Block attributes a
// SetRCBValues sequence writes, in their fixed canonical order.
type Attribute string

const (
	AttrResvTms  Attribute = "ResvTms"
	AttrIntgPd   Attribute = "IntgPd"
	AttrTrgOps   Attribute = "TrgOps"
	AttrOptFlds  Attribute = "OptFlds"
	AttrPurgeBuf Attribute = "PurgeBuf"
	AttrEntryID  Attribute = "EntryID"
	AttrRptEna   Attribute = "RptEna"
	AttrGI       Attribute = "GI"
)

// AttributeOrder is the fixed canonical order the activation driver
// writes attributes in; some IEDs reject RptEna=true unless earlier
// attributes were written first, and RptEna must precede GI.
var AttributeOrder = []Attribute{
	AttrResvTms, AttrIntgPd, AttrTrgOps, AttrOptFlds,
	AttrPurgeBuf, AttrEntryID, AttrRptEna, AttrGI,
}

// Default attribute values, matching captured traces.
var (
	DefaultResvTms  uint64 = 5
	DefaultIntgPd   uint64 = 2000
	DefaultTrgOps          = []byte{0x02, 0x0c}
	DefaultOptFlds         = []byte{0x06, 0x7b, 0x00}
	DefaultPurgeBuf        = true
	DefaultEntryID         = make([]byte, 8)
)

// EncodeGetRCBValues builds a GetRCBValues confirmed request PDU for
// the RCB reference (domainID, itemID), consuming one invoke-ID from
// invokeIDs.
func EncodeGetRCBValues(invokeIDs *InvokeIDCounter, domainID, itemID string) []byte {
	op := ber.Wrap(0xA4, ber.Wrap(0xA1, ber.Wrap(0xA0, nameBlock(domainID, itemID))))
	return BuildConfirmedRequest(invokeIDs.Next(), op)
}

// EncodeSetRCBValues builds a SetRCBValues confirmed request PDU
// writing one attribute of the RCB reference (domainID, itemID): the
// wire item name is `itemID$attribute`.
func EncodeSetRCBValues(invokeIDs *InvokeIDCounter, domainID, itemID string, attribute Attribute, value []byte) []byte {
	fullItem := itemID + "$" + string(attribute)
	name := ber.Wrap(0xA0, nameBlock(domainID, fullItem))
	val := ber.Wrap(0xA0, value)
	op := ber.Wrap(0xA5, append(name, val...))
	return BuildConfirmedRequest(invokeIDs.Next(), op)
}

// EncodeResvTms, EncodeIntgPd, ... encode each attribute's value per
// the wire encoding table: ResvTms/IntgPd are unsigned, TrgOps/OptFlds
// are bit-strings, PurgeBuf/RptEna/GI are booleans, EntryID is an
// octet-string.

func EncodeResvTms(seconds uint64) []byte { return ber.EncodeUnsigned(seconds) }
func EncodeIntgPdMillis(ms uint64) []byte { return ber.EncodeUnsigned(ms) }
func EncodeTrgOps(paddedBits []byte) []byte { return ber.EncodeBitString(paddedBits) }
func EncodeOptFlds(paddedBits []byte) []byte { return ber.EncodeBitString(paddedBits) }
func EncodePurgeBuf(v bool) []byte  { return ber.EncodeBoolean(v) }
func EncodeEntryID(octets []byte) []byte { return ber.EncodeOctetString(octets) }
func EncodeRptEna(v bool) []byte    { return ber.EncodeBoolean(v) }
func EncodeGI(v bool) []byte        { return ber.EncodeBoolean(v) }
