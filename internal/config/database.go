package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// buildDSN assembles a postgres:// URL from the discrete database settings.
//
// net.JoinHostPort handles IPv6 hosts, and the password is URL-escaped so
// characters like ':' or '@' cannot break the URL structure.
func buildDSN(d DatabaseConfig) string {
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		hostPort,
		d.Name,
		sslMode,
	)
}
