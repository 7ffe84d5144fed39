package ber

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DataKind tags the variant held by a Data value. Keeping this as an
// explicit enum switched over internally — rather than leaning on
// interface{} + reflection at every call site — is what the
// "sum types over reflection" decision in the data model design notes
// calls for: callers switch once, on a closed set of kinds, instead of
// type-asserting a naked any wherever a decoded value is used.
type DataKind int

const (
	KindUnknown DataKind = iota
	KindBool
	KindUint
	KindBits
	KindOctets
	KindVisibleString
	KindFloat
	KindBinaryTime
	KindUTCTime
	KindStructure
	// KindResult tags a listOfAccessResult element: a Result-style
	// nested variant wrapping either a successfully decoded Data value
	// (the only variant this decoder ever produces today) or, in the
	// future, a failure code — see spec.md §4.3's "MMS report list
	// decoding" and §9's "Result-style nested variant" design note.
	KindResult
)

// BitString is a BER BIT STRING value: Bits holds the packed octets and
// Len the number of significant bits (padding bits are not part of Len).
type BitString struct {
	Bits []byte
	Len  int
}

// Data is a decoded MMS data value. Exactly one of the typed accessors
// below is meaningful for a given Kind(); the others return the zero
// value. Unknown carries the raw tag and bytes of anything this decoder
// doesn't recognize, so a caller can still inspect or re-encode it
// instead of losing the value.
type Data struct {
	kind      DataKind
	boolVal   bool
	uintVal   uint64
	bits      BitString
	octets    []byte
	str       string
	floatVal  float64
	timeVal   time.Time
	structure []Data
	rawTag    byte
	raw       []byte
	resultOK  bool
	result    *Data
}

func NewBoolData(v bool) Data             { return Data{kind: KindBool, boolVal: v} }
func NewUintData(v uint64) Data           { return Data{kind: KindUint, uintVal: v} }
func NewBitsData(b BitString) Data        { return Data{kind: KindBits, bits: b} }
func NewOctetsData(v []byte) Data         { return Data{kind: KindOctets, octets: v} }
func NewVisibleStringData(v string) Data  { return Data{kind: KindVisibleString, str: v} }
func NewFloatData(v float64) Data         { return Data{kind: KindFloat, floatVal: v} }
func NewBinaryTimeData(t time.Time) Data  { return Data{kind: KindBinaryTime, timeVal: t} }
func NewUTCTimeData(t time.Time) Data     { return Data{kind: KindUTCTime, timeVal: t} }
func NewStructureData(items []Data) Data  { return Data{kind: KindStructure, structure: items} }
func NewUnknownData(tag byte, raw []byte) Data {
	return Data{kind: KindUnknown, rawTag: tag, raw: raw}
}

// NewSuccessResultData wraps v as a successful listOfAccessResult
// element: `{success: v}`. There is no failure constructor yet — the
// decoder here never produces one — but ResultOK/ResultValue are shaped
// to extend to one without breaking callers.
func NewSuccessResultData(v Data) Data {
	return Data{kind: KindResult, resultOK: true, result: &v}
}

func (d Data) Kind() DataKind { return d.kind }
func (d Data) Bool() bool     { return d.boolVal }
func (d Data) Uint() uint64   { return d.uintVal }
func (d Data) Bits() BitString {
	return d.bits
}
func (d Data) Octets() []byte    { return d.octets }
func (d Data) VisibleString() string { return d.str }
func (d Data) Float() float64    { return d.floatVal }
func (d Data) Time() time.Time   { return d.timeVal }
func (d Data) Structure() []Data { return d.structure }
func (d Data) RawTag() byte      { return d.rawTag }
func (d Data) Raw() []byte       { return d.raw }

// ResultOK reports whether a KindResult value is the success variant.
func (d Data) ResultOK() bool { return d.resultOK }

// ResultValue returns the wrapped Data of a KindResult success variant,
// or the zero Data if d is not a successful result.
func (d Data) ResultValue() Data {
	if d.kind != KindResult || d.result == nil {
		return Data{}
	}
	return *d.result
}

func (d Data) String() string {
	switch d.kind {
	case KindBool:
		return fmt.Sprintf("bool(%t)", d.boolVal)
	case KindUint:
		return fmt.Sprintf("uint(%d)", d.uintVal)
	case KindBits:
		return fmt.Sprintf("bits(%d bits)", d.bits.Len)
	case KindOctets:
		return fmt.Sprintf("octets(%x)", d.octets)
	case KindVisibleString:
		return fmt.Sprintf("vstr(%q)", d.str)
	case KindFloat:
		return fmt.Sprintf("float(%v)", d.floatVal)
	case KindBinaryTime:
		return fmt.Sprintf("binTime(%s)", d.timeVal.Format(time.RFC3339Nano))
	case KindUTCTime:
		return fmt.Sprintf("utcTime(%s)", d.timeVal.Format(time.RFC3339Nano))
	case KindStructure:
		parts := make([]string, len(d.structure))
		for i, item := range d.structure {
			parts[i] = item.String()
		}
		return fmt.Sprintf("structure(%s)", strings.Join(parts, ", "))
	case KindResult:
		if d.resultOK {
			return fmt.Sprintf("success(%s)", d.result.String())
		}
		return "failure"
	default:
		return fmt.Sprintf("unknown(tag=0x%02x, %d bytes)", d.rawTag, len(d.raw))
	}
}

// binaryTimeEpochThreshold disambiguates the two epochs a 32-bit
// binary-time count of seconds can be measured from: the 1984-01-01
// IEC 61850 epoch and the 1970-01-01 UNIX epoch. Values at or above the
// threshold are interpreted as UNIX seconds (already past 1984 plus the
// span to 2001-09-09), values below it as IEC 61850 seconds-since-1984.
const binaryTimeEpochThreshold = 1_000_000_000

var iec61850Epoch = time.Date(1984, time.January, 1, 0, 0, 0, 0, time.UTC)

// DecodeBinaryTime decodes a 4-byte seconds count with epoch
// disambiguation, per the threshold above.
func DecodeBinaryTime(seconds uint32) time.Time {
	if seconds >= binaryTimeEpochThreshold {
		return time.Unix(int64(seconds), 0).UTC()
	}
	return iec61850Epoch.Add(time.Duration(seconds) * time.Second)
}

// DecodeUTCTime decodes the MMS UTCTime wire format used by
// informationReport entries: 4 bytes of seconds, following the same
// epoch-disambiguation semantics as DecodeBinaryTime (1984 IEC 61850
// epoch vs. 1970 UNIX epoch, per binaryTimeEpochThreshold), followed
// optionally by a 2-byte fraction-of-second counted in units of
// 1/65536s, followed optionally by a quality byte.
func DecodeUTCTime(value []byte) (time.Time, error) {
	if len(value) < 4 {
		return time.Time{}, fmt.Errorf("utc-time: need at least 4 bytes, got %d", len(value))
	}
	seconds := DecodeUint32(value, 4, 0)
	if seconds >= 1<<31 {
		return time.Time{}, fmt.Errorf("utc-time: seconds %d out of range", seconds)
	}
	t := DecodeBinaryTime(seconds)
	if len(value) >= 6 {
		frac := DecodeUint32(value, 2, 4)
		nanos := int64(frac) * int64(time.Second) / 65536
		t = t.Add(time.Duration(nanos))
	}
	return t, nil
}

// DecodeBERFloat decodes an MMS FloatingPoint value: a one-byte exponent
// width followed by IEEE754 bytes (4 bytes for single, 8 for double),
// rounded to 6 decimal places per spec.md §4.3.
func DecodeBERFloat(value []byte) (float64, error) {
	if len(value) == 5 {
		return RoundDecimal6(float64(DecodeFloat(value, 0))), nil
	}
	if len(value) == 9 {
		return RoundDecimal6(DecodeDouble(value, 0)), nil
	}
	return 0, fmt.Errorf("floating-point: unsupported length %d", len(value))
}

// RoundDecimal6 rounds a decoded floating-point value to 6 decimal
// places, per spec.md §4.3's "round to 6 decimal places on output" rule.
// Applied by DecodeBERFloat so every KindFloat Data already holds the
// rounded value.
func RoundDecimal6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
