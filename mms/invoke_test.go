package mms

import "testing"

func TestInvokeIDCounterFollowsRolloverFormula(t *testing.T) {
	const base uint16 = 0x012C
	c := NewInvokeIDCounter(base)

	for k := 1; k <= 5; k++ {
		want := uint16((uint32(base) + uint32(k-1)) % 65536)
		if got := c.Next(); got != want {
			t.Fatalf("request %d: got invoke-ID 0x%04x, want 0x%04x", k, got, want)
		}
	}
}

func TestInvokeIDCounterRollsOverAt65536(t *testing.T) {
	c := NewInvokeIDCounter(65534)
	if got := c.Next(); got != 65534 {
		t.Fatalf("got %d, want 65534", got)
	}
	if got := c.Next(); got != 65535 {
		t.Fatalf("got %d, want 65535", got)
	}
	if got := c.Next(); got != 0 {
		t.Fatalf("got %d, want 0 after rollover", got)
	}
}

func TestInvokeIDCounterResetRestartsSequenceAtBase(t *testing.T) {
	c := NewInvokeIDCounter(DefaultInvokeIDBase)
	c.Next()
	c.Next()
	c.Reset(0x0001)
	if got := c.Next(); got != 0x0001 {
		t.Fatalf("after reset, got 0x%04x, want 0x0001", got)
	}
}
