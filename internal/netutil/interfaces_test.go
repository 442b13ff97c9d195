package netutil

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterfaces(t *testing.T) {
	ifaces := Interfaces()
	require.NotEmpty(t, ifaces, "must always offer at least one address")

	for _, iface := range ifaces {
		t.Run(iface.Name, func(t *testing.T) {
			ip := net.ParseIP(iface.IP)
			require.NotNil(t, ip, "IP should parse: %s", iface.IP)
			assert.NotNil(t, ip.To4(), "only IPv4 addresses are advertised")
			assert.False(t, ip.IsLinkLocalUnicast(), "link-local addresses are excluded")
			assert.True(t, strings.Contains(iface.Name, iface.IP),
				"name should include the address for display")
		})
	}

	// Loopback appears only as the fallback entry.
	if len(ifaces) > 1 {
		for _, iface := range ifaces {
			assert.NotEqual(t, "127.0.0.1", iface.IP)
		}
	}
}

func TestUsable(t *testing.T) {
	tests := []struct {
		ip     string
		usable bool
	}{
		{"192.168.1.5", true},
		{"10.0.0.2", true},
		{"127.0.0.1", false},
		{"169.254.10.20", false},
	}

	for _, tc := range tests {
		t.Run(tc.ip, func(t *testing.T) {
			assert.Equal(t, tc.usable, usable(net.ParseIP(tc.ip)))
		})
	}
}

func TestAddrIPv4(t *testing.T) {
	t.Run("extracts IPv4 from IPNet", func(t *testing.T) {
		_, ipnet, err := net.ParseCIDR("192.168.1.5/24")
		require.NoError(t, err)
		ip := addrIPv4(ipnet)
		require.NotNil(t, ip)
		assert.Equal(t, "192.168.1.0", ip.String())
	})

	t.Run("rejects IPv6", func(t *testing.T) {
		_, ipnet, err := net.ParseCIDR("fe80::1/64")
		require.NoError(t, err)
		assert.Nil(t, addrIPv4(ipnet))
	})

	t.Run("handles unknown addr types", func(t *testing.T) {
		assert.Nil(t, addrIPv4(fakeAddr{}))
	})
}

type fakeAddr struct{}

func (fakeAddr) Network() string { return "fake" }
func (fakeAddr) String() string  { return "fake" }
