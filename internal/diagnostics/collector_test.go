package diagnostics

import (
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPInfoCollectorDescribe(t *testing.T) {
	c := NewTCPInfoCollector(nil)
	descs := make(chan *prometheus.Desc, 10)
	c.Describe(descs)
	close(descs)

	var count int
	for range descs {
		count++
	}
	assert.Equal(t, 3, count)
}

// dialLoopback returns a connected client/server TCP conn pair backed
// by real sockets, so readTCPInfo has an actual fd to query — unlike
// net.Pipe, which has none.
func dialLoopback(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, _ := ln.Accept()
		accepted <- conn
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server = <-accepted
	require.NotNil(t, server)
	return client, server
}

func TestTCPInfoCollectorCollectsRealConn(t *testing.T) {
	c := NewTCPInfoCollector(nil)
	client, server := dialLoopback(t)
	defer client.Close()
	defer server.Close()

	c.Add(client, "test-correlation-id")

	metrics := make(chan prometheus.Metric, 10)
	c.Collect(metrics)
	close(metrics)

	var count int
	for range metrics {
		count++
	}
	// Exact gauge values depend on the kernel's live tcp_info snapshot;
	// this only asserts the happy path emits all three metrics rather
	// than dropping the conn.
	assert.Equal(t, 3, count)
}

func TestTCPInfoCollectorDropsClosedConn(t *testing.T) {
	c := NewTCPInfoCollector(nil)
	client, server := dialLoopback(t)
	defer server.Close()
	client.Close()

	c.Add(client, "test-correlation-id")

	metrics := make(chan prometheus.Metric, 10)
	c.Collect(metrics)
	close(metrics)

	var count int
	for range metrics {
		count++
	}
	assert.Equal(t, 0, count)

	c.mu.Lock()
	_, tracked := c.conns[client]
	c.mu.Unlock()
	require.False(t, tracked)
}

func TestTCPInfoCollectorRemove(t *testing.T) {
	c := NewTCPInfoCollector(nil)
	client, server := dialLoopback(t)
	defer client.Close()
	defer server.Close()

	c.Add(client, "id")
	c.Remove(client)

	c.mu.Lock()
	_, tracked := c.conns[client]
	c.mu.Unlock()
	assert.False(t, tracked)
}
