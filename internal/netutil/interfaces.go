// Package netutil enumerates the local IPv4 addresses a user can choose
// to advertise in the join URL.
package netutil

import (
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
)

type Interface struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
}

// Interfaces returns the host's usable IPv4 addresses, labeled with the
// adapter name. Loopback and 169.254/16 link-local addresses are skipped;
// if nothing qualifies a localhost entry is returned so the UI always has
// something to offer.
func Interfaces() []Interface {
	var out []Interface

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn().Err(err).Msg("failed to enumerate network interfaces")
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ip := addrIPv4(addr)
			if ip == nil || !usable(ip) {
				continue
			}
			out = append(out, Interface{
				Name: fmt.Sprintf("%s (%s)", iface.Name, ip.String()),
				IP:   ip.String(),
			})
		}
	}

	if len(out) == 0 {
		out = append(out, Interface{Name: "Localhost (127.0.0.1)", IP: "127.0.0.1"})
	}
	return out
}

func addrIPv4(addr net.Addr) net.IP {
	var ip net.IP
	switch v := addr.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	}
	return ip.To4()
}

func usable(ip net.IP) bool {
	return !ip.IsLoopback() && !ip.IsLinkLocalUnicast()
}
