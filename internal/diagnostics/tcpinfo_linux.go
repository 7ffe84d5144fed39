//go:build linux

package diagnostics

import (
	"fmt"
	"net"

	"github.com/higebu/netfd"
	"golang.org/x/sys/unix"
)

// readTCPInfo reads TCP_INFO for conn's underlying file descriptor via
// getsockopt, mirroring runZeroInc-sockstats/pkg/tcpinfo's GetTCPInfo
// but unpacking only the RTT/RTTVar/Retransmits fields this package's
// gauges need, not the full kernel-version-gated struct.
func readTCPInfo(conn net.Conn) (tcpInfo, error) {
	fd := netfd.GetFdFromConn(conn)
	if fd < 0 {
		return tcpInfo{}, fmt.Errorf("diagnostics: could not get fd from conn")
	}

	info, err := unix.GetsockoptTCPInfo(fd, unix.IPPROTO_TCP, unix.TCP_INFO)
	if err != nil {
		return tcpInfo{}, fmt.Errorf("diagnostics: getsockopt TCP_INFO: %w", err)
	}

	return tcpInfo{
		RTT:         info.Rtt,
		RTTVar:      info.Rttvar,
		Retransmits: uint64(info.Total_retrans),
	}, nil
}
