package ber

// This file adds a small append-based encoding layer on top of the
// fixed-buffer primitives above (EncodeTL, EncodeLength, ...): building
// an MMS PDU means nesting TLVs of a priori unknown total length, which
// is far more natural with growable []byte than with a pre-sized
// buffer and a bufPos cursor. The byte-level rules (short-form lengths,
// minimal-length integers) are the same; only the plumbing differs.

const (
	TagDataBoolean       byte = 0x83
	TagDataBitString     byte = 0x84
	TagDataUnsignedShort byte = 0x85
	TagDataUnsignedLong  byte = 0x86
	TagDataFloat         byte = 0x87
	TagDataOctetString   byte = 0x89
	TagDataVisibleString byte = 0x8A
	TagDataBinaryTime    byte = 0x8C
	TagDataUTCTime       byte = 0x91
	TagWrite             byte = 0xA5
)

// EncodeLengthAppend appends the BER short/long-form length encoding of
// n to dst, returning the extended slice.
func EncodeLengthAppend(dst []byte, n int) []byte {
	switch {
	case n < 128:
		return append(dst, byte(n))
	case n < 256:
		return append(dst, 0x81, byte(n))
	case n < 65536:
		return append(dst, 0x82, byte(n>>8), byte(n))
	default:
		return append(dst, 0x83, byte(n>>16), byte(n>>8), byte(n))
	}
}

// wrapPrimitive builds tag + short/long-form length + content.
func wrapPrimitive(tag byte, content []byte) []byte {
	out := make([]byte, 0, 2+len(content))
	out = append(out, tag)
	out = EncodeLengthAppend(out, len(content))
	out = append(out, content...)
	return out
}

// Wrap builds tag + length + content for a constructed (or primitive)
// TLV whose content has already been assembled by the caller — the
// general-purpose nesting primitive every PDU builder composes with.
func Wrap(tag byte, content []byte) []byte {
	return wrapPrimitive(tag, content)
}

// EncodeIA5 encodes s as an IA5String: `1a <len> <ascii bytes>`.
func EncodeIA5(s string) []byte {
	return wrapPrimitive(byte(VisibleString), []byte(s))
}

// EncodeBoolean encodes b as a Data.boolean: `83 01 01` or `83 01 00`.
func EncodeBoolean(b bool) []byte {
	v := byte(0x00)
	if b {
		v = 0x01
	}
	return wrapPrimitive(TagDataBoolean, []byte{v})
}

// EncodeUnsigned encodes n as a Data.unsigned value using the minimum
// number of big-endian bytes that represent n without a redundant
// leading zero byte (k >= 1): `85 01 n` for n < 256, `86 02 hi lo` for
// n < 65536, otherwise `86 <k> <bytes>`.
func EncodeUnsigned(n uint64) []byte {
	content := minimalBigEndian(n)
	tag := TagDataUnsignedLong
	if len(content) == 1 {
		tag = TagDataUnsignedShort
	}
	return wrapPrimitive(tag, content)
}

func minimalBigEndian(n uint64) []byte {
	if n == 0 {
		return []byte{0}
	}
	var buf [8]byte
	k := 0
	for v := n; v > 0; v >>= 8 {
		k++
	}
	for i := k - 1; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	return append([]byte(nil), buf[:k]...)
}

// EncodeBitString wraps already-BER-padded bits (the first byte is the
// padding-bit count, per BER BIT STRING convention): `84 <len> <bytes>`.
func EncodeBitString(paddedBits []byte) []byte {
	return wrapPrimitive(TagDataBitString, paddedBits)
}

// EncodeOctetString encodes raw bytes as a Data.octet-string:
// `89 <len> <bytes>`.
func EncodeOctetString(octets []byte) []byte {
	return wrapPrimitive(TagDataOctetString, octets)
}

// EncodeVisibleString encodes s as a Data.visible-string: `8a <len> <ascii bytes>`.
func EncodeVisibleString(s string) []byte {
	return wrapPrimitive(TagDataVisibleString, []byte(s))
}
