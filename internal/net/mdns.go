package net

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_scrapboard._tcp"

// Advertise announces a board viewer listening on port to the LAN. Close
// the returned server to withdraw it.
func Advertise(port int, boardName string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		ServiceType,
		"",
		"",
		port,
		nil,
		[]string{"board=" + boardName},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Peer is a board viewer found on the LAN.
type Peer struct {
	Name string
	Addr string
	Info []string
}

// Browse looks for advertised viewers for timeout and calls found for each.
func Browse(timeout time.Duration, found func(Peer)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(Peer{
				Name: e.Name,
				Addr: fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port),
				Info: e.InfoFields,
			})
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	return err
}
