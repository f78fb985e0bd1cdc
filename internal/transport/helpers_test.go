package transport_test

import (
	"net"
	"strconv"
	"testing"
)

func splitHostPort(t *testing.T, addr string) (string, uint16) {
	t.Helper()
	host, portRaw, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split %q: %v", addr, err)
	}
	port, err := strconv.Atoi(portRaw)
	if err != nil {
		t.Fatalf("parse port %q: %v", portRaw, err)
	}
	return host, uint16(port)
}
