package discovery

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// LocalName turns a bare host name into an mDNS .local name
func LocalName(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	if name == "" || strings.HasSuffix(name, ".local") {
		return name
	}
	return name + ".local"
}

// Announce answers mDNS queries for localName on the LAN so the dashboard
// is reachable as http://<name>.local. IPv6 is best effort; the server
// runs on IPv4 alone when IPv6 multicast is unavailable.
func Announce(localName string, log *slog.Logger) (io.Closer, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "mdns")

	name := LocalName(localName)
	if name == "" {
		return nil, errors.New("mdns local name is empty")
	}

	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		return nil, fmt.Errorf("resolving mdns ipv4 address: %w", err)
	}
	l4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		return nil, fmt.Errorf("listening on mdns ipv4: %w", err)
	}

	var pc6 *ipv6.PacketConn
	if addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6); err != nil {
		log.Warn("ipv6 mdns unavailable", "error", err)
	} else if l6, err := net.ListenUDP("udp6", addr6); err != nil {
		log.Warn("ipv6 mdns unavailable", "error", err)
	} else {
		pc6 = ipv6.NewPacketConn(l6)
	}

	conn, err := mdns.Server(ipv4.NewPacketConn(l4), pc6, &mdns.Config{
		LocalNames: []string{name},
	})
	if err != nil {
		l4.Close()
		if pc6 != nil {
			pc6.Close()
		}
		return nil, fmt.Errorf("starting mdns server: %w", err)
	}
	log.Info("announcing", "name", name)
	return conn, nil
}
