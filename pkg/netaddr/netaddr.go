// Kunhua Huang 2026

package netaddr

import (
	"net"
	"strconv"

	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

// CheckValidIP parses s as an IPv4 or IPv6 address usable as a unicast
// endpoint. Multicast and unspecified addresses are rejected.
func CheckValidIP(s string) (net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, protocol.Wrap(protocol.ErrorCodeAddress, nil, "invalid IP address %q", s)
	}

	if ip.IsMulticast() || ip.IsUnspecified() {
		return nil, protocol.Wrap(protocol.ErrorCodeAddress, nil, "IP address %s not allowed for use", ip)
	}

	return ip, nil
}

func ParsePort(s string) (uint16, error) {
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, protocol.Wrap(protocol.ErrorCodeArgument, err, "invalid port %q", s)
	}
	return uint16(p), nil
}

func HostPort(ip net.IP, port uint16) string {
	return net.JoinHostPort(ip.String(), strconv.Itoa(int(port)))
}

// FindAddress returns the first non-loopback IPv4 address of an interface
// that is up.
func FindAddress() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, protocol.Wrap(protocol.ErrorCodeAddress, err, "could not get network interfaces")
	}
	return firstUsableIPv4(ifaces, func(iface net.Interface) ([]net.Addr, error) {
		return iface.Addrs()
	})
}

func firstUsableIPv4(ifaces []net.Interface, addrsOf func(net.Interface) ([]net.Addr, error)) (net.IP, error) {
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := addrsOf(iface)
		if err != nil {
			continue
		}

		for _, a := range addrs {
			var ip net.IP
			switch v := a.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if v4 := ip.To4(); v4 != nil && !v4.IsLoopback() {
				return v4, nil
			}
		}
	}

	return nil, protocol.Wrap(protocol.ErrorCodeAddress, nil, "no non-loopback IPv4 address found")
}
