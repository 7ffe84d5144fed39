//go:build !linux

package diagnostics

import (
	"fmt"
	"net"
	"runtime"
)

// readTCPInfo has no TCP_INFO source outside Linux; mirrors
// runZeroInc-sockstats/pkg/tcpinfo's tcpinfo_other.go stub.
func readTCPInfo(conn net.Conn) (tcpInfo, error) {
	return tcpInfo{}, fmt.Errorf("diagnostics: TCP_INFO unsupported on %s", runtime.GOOS)
}
