package ber

import (
	"fmt"
	"time"
)

// DecodeData implements the tag-dispatched recursive-descent decoder for
// MMS Data values: given buffer and a starting position, it decodes one
// TLV and returns the resulting Data, the position just past it, and an
// error only for genuinely malformed input (short buffer, bad length).
// Unknown tags are skipped via their declared length and returned as
// KindUnknown rather than treated as an error, so a caller decoding a
// list of values can keep going after one surprising tag.
func DecodeData(buffer []byte, pos int) (Data, int, error) {
	if pos >= len(buffer) {
		return Data{}, pos, fmt.Errorf("decode data: position %d past end of %d-byte buffer", pos, len(buffer))
	}
	tag := buffer[pos]
	pos++

	newPos, length, err := DecodeLength(buffer, pos, len(buffer))
	if err != nil {
		return Data{}, pos, fmt.Errorf("decode data: tag 0x%02x: %w", tag, err)
	}
	pos = newPos
	if pos+length > len(buffer) {
		return Data{}, pos, fmt.Errorf("decode data: tag 0x%02x: length %d exceeds buffer", tag, length)
	}
	value := buffer[pos : pos+length]
	end := pos + length

	if tag&byte(FormConstructed) != 0 {
		items, err := decodeStructure(value)
		if err != nil {
			return NewUnknownData(tag, value), end, nil
		}
		return NewStructureData(items), end, nil
	}

	switch tag {
	case 0x83:
		return NewBoolData(DecodeBoolean(value, 0)), end, nil
	case 0x85, 0x86:
		return NewUintData(uint64(DecodeUint32(value, len(value), 0))), end, nil
	case 0x84:
		if len(value) == 0 {
			return NewBitsData(BitString{}), end, nil
		}
		paddingBits := value[0]
		bits := value[1:]
		significant := len(bits)*8 - int(paddingBits)
		return NewBitsData(BitString{Bits: append([]byte(nil), bits...), Len: significant}), end, nil
	case 0x89:
		return NewOctetsData(append([]byte(nil), value...)), end, nil
	case 0x8A, 0x80:
		return NewVisibleStringData(string(value)), end, nil
	case 0x87:
		f, err := DecodeBERFloat(value)
		if err != nil {
			return NewUnknownData(tag, value), end, nil
		}
		return NewFloatData(f), end, nil
	case 0x8C:
		if len(value) < 4 || len(value) > 6 {
			return NewUnknownData(tag, value), end, nil
		}
		seconds := DecodeUint32(value, 4, 0)
		if seconds >= 1<<31 {
			return NewUnknownData(tag, value), end, nil
		}
		t := DecodeBinaryTime(seconds)
		if len(value) == 6 {
			frac := DecodeUint32(value, 2, 4)
			t = t.Add(time.Duration(int64(frac) * int64(time.Second) / 65536))
		}
		return NewBinaryTimeData(t), end, nil
	case 0x91:
		t, err := DecodeUTCTime(value)
		if err != nil {
			return NewUnknownData(tag, value), end, nil
		}
		return NewUTCTimeData(t), end, nil
	default:
		return NewUnknownData(tag, value), end, nil
	}
}

func decodeStructure(buffer []byte) ([]Data, error) {
	var items []Data
	pos := 0
	for pos < len(buffer) {
		item, newPos, err := DecodeData(buffer, pos)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		pos = newPos
	}
	return items, nil
}
