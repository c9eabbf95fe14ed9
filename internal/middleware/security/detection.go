package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Detector resolves client addresses and flags probing requests.
type Detector struct {
	trustedProxies []*net.IPNet
}

// NewDetector trusts loopback and private networks to set forwarding
// headers.
func NewDetector() *Detector {
	d := &Detector{}
	for _, cidr := range []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"} {
		if err := d.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return d
}

// AddTrustedProxy adds a network allowed to set forwarding headers.
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// ClientIP returns the address of the client. X-Forwarded-For and
// X-Real-IP are honoured only when the direct peer is a trusted proxy.
func (d *Detector) ClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	parsed := net.ParseIP(directIP)
	if parsed == nil || !d.isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

var probePatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin", ".git", ".ssh",
	"<script", "union select", "etc/passwd",
}

// Suspicious reports whether the request looks like a scanner probe.
// Such requests are only logged, never blocked.
func (d *Detector) Suspicious(r *http.Request) bool {
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	target := strings.ToLower(r.URL.Path + "?" + query)
	for _, p := range probePatterns {
		if strings.Contains(target, p) {
			return true
		}
	}
	switch r.Method {
	case http.MethodTrace, http.MethodConnect:
		return true
	}
	return len(r.URL.String()) > 2048
}
