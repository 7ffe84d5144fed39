package ber

import (
	"bytes"
	"testing"
)

func TestEncodeUnsignedMinimalLength(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want []byte
	}{
		{"5 fits in one byte, short tag", 5, []byte{0x85, 0x01, 0x05}},
		{"2000 needs two bytes, long tag", 2000, []byte{0x86, 0x02, 0x07, 0xd0}},
		{"65536 needs three bytes, no redundant leading zero", 65536, []byte{0x86, 0x03, 0x01, 0x00, 0x00}},
		{"0 still encodes one content byte", 0, []byte{0x85, 0x01, 0x00}},
		{"255 stays one byte", 255, []byte{0x85, 0x01, 0xff}},
		{"256 needs two bytes", 256, []byte{0x86, 0x02, 0x01, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeUnsigned(tt.n)
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("EncodeUnsigned(%d) = % x, want % x", tt.n, got, tt.want)
			}
		})
	}
}

func TestEncodeBoolean(t *testing.T) {
	if got := EncodeBoolean(true); !bytes.Equal(got, []byte{0x83, 0x01, 0x01}) {
		t.Fatalf("EncodeBoolean(true) = % x", got)
	}
	if got := EncodeBoolean(false); !bytes.Equal(got, []byte{0x83, 0x01, 0x00}) {
		t.Fatalf("EncodeBoolean(false) = % x", got)
	}
}

func TestEncodeOctetString(t *testing.T) {
	got := EncodeOctetString(make([]byte, 8))
	want := append([]byte{0x89, 0x08}, make([]byte, 8)...)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeOctetString(8 zero bytes) = % x, want % x", got, want)
	}
}

func TestEncodeBitString(t *testing.T) {
	got := EncodeBitString([]byte{0x02, 0x0c})
	want := []byte{0x84, 0x02, 0x02, 0x0c}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeBitString(02 0c) = % x, want % x", got, want)
	}
}

func TestEncodeIA5(t *testing.T) {
	got := EncodeIA5("VMC7_1LD0")
	want := append([]byte{0x1a, 0x09}, []byte("VMC7_1LD0")...)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeIA5 = % x, want % x", got, want)
	}
}

func TestWrapProducesShortFormLengthUnderEachThreshold(t *testing.T) {
	if got, want := Wrap(0xa0, make([]byte, 10)), byte(10); got[1] != want {
		t.Fatalf("Wrap length byte = 0x%02x, want 0x%02x", got[1], want)
	}
	if got := Wrap(0xa0, make([]byte, 200)); got[1] != 0x81 || got[2] != 200 {
		t.Fatalf("Wrap long-form-1 length bytes = % x", got[1:3])
	}
}
