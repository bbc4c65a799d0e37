package net

import (
	"net"

	"ScrapBoard/internal/logging"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// no route out; fall back to the local interfaces
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// getLocalIPFallback is used on networks without internet access.
func getLocalIPFallback() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4().String(), nil
			}
		}
	}
	logging.Logger().Warn("[NET] no suitable local IP found, share link uses loopback")
	return "127.0.0.1", nil
}
