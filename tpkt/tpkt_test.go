package tpkt

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

func parseHexString(s string) []byte {
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		panic(err)
	}
	return b
}

func TestSendWritesHeader(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	f := New(client)
	payload := parseHexString("11 e0 00 00 00 01 00 c0 01 0a c2 02 00 01 c1 02 00 01")

	done := make(chan error, 1)
	go func() { done <- f.Send(payload) }()

	got := make([]byte, headerSize+len(payload))
	if _, err := io.ReadFull(server, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("send: %v", err)
	}

	wantHeader := []byte{0x03, 0x00, 0x00, byte(headerSize + len(payload))}
	if string(got[:headerSize]) != string(wantHeader) {
		t.Errorf("header = % x, want % x", got[:headerSize], wantHeader)
	}
	if string(got[headerSize:]) != string(payload) {
		t.Errorf("payload = % x, want % x", got[headerSize:], payload)
	}
}

func TestRecvReturnsPayload(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	payload := parseHexString("0e 86 05 06 13 01 00 16 01 00")
	frame := append([]byte{0x03, 0x00, 0x00, byte(headerSize + len(payload))}, payload...)

	go func() { _, _ = server.Write(frame) }()

	got, err := New(client).Recv(context.Background())
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = % x, want % x", got, payload)
	}
}

func TestRecvCleanEOFBeforeFrame(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	server.Close()

	_, err := New(client).Recv(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestRecvTruncatedMidFrame(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	go func() {
		_, _ = server.Write([]byte{0x03, 0x00, 0x00, 0x0a})
		_, _ = server.Write([]byte{0x01, 0x02})
		server.Close()
	}()

	_, err := New(client).Recv(context.Background())
	var trunc *Truncated
	if !errors.As(err, &trunc) {
		t.Fatalf("err = %v, want *Truncated", err)
	}
}

func TestRecvOverflow(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() { _, _ = server.Write([]byte{0x03, 0x00, 0xff, 0xff}) }()

	_, err := New(client).Recv(context.Background())
	var overflow *Overflow
	if !errors.As(err, &overflow) {
		t.Fatalf("err = %v, want *Overflow", err)
	}
}

func TestRecvContextDeadline(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(client).Recv(ctx)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}
