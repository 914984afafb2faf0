package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// PortFromQuery reads the "port" query parameter. Absent or non-numeric
// values, zero, negatives and anything beyond 65535 give fallback.
func PortFromQuery(q url.Values, fallback int) int {
	raw := strings.TrimSpace(q.Get("port"))
	if raw == "" {
		return fallback
	}
	port, err := strconv.ParseUint(raw, 10, 16)
	if err != nil || port == 0 {
		return fallback
	}
	return int(port)
}

// Endpoint builds the probe URL for port.
func (c *Config) Endpoint(port int) string {
	host := c.ProbeHost
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/pings", net.JoinHostPort(host, strconv.Itoa(port)))
}

// ResolveEndpoint returns the probe URL selected by a raw query string such
// as "port=9000".
func (c *Config) ResolveEndpoint(rawQuery string) string {
	q, _ := url.ParseQuery(rawQuery)
	return c.Endpoint(PortFromQuery(q, c.DefaultPort))
}
