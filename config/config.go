// Package config resolves the benchmark server endpoint.
package config

import (
	"net"
	"net/url"
	"os"
)

const (
	// HostEnv names the environment variable holding the server host.
	HostEnv = "BENCHMARK_SERVER_HOST"
	// PortEnv names the environment variable holding the server port.
	PortEnv = "BENCHMARK_SERVER_PORT"

	DefaultHost = "127.0.0.1"
	DefaultPort = "8080"

	// Path is the route served by the multiply endpoint.
	Path = "/multiply"
)

// Endpoint locates the multiply server.
type Endpoint struct {
	Host string
	Port string
}

// FromEnv reads the endpoint from the environment, falling back to the
// documented defaults for unset or empty variables.
func FromEnv() Endpoint {
	return Endpoint{
		Host: lookup(HostEnv, DefaultHost),
		Port: lookup(PortEnv, DefaultPort),
	}
}

// URL returns the full multiply URL without a query string.
func (e Endpoint) URL() string {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(e.Host, e.Port),
		Path:   Path,
	}

	return u.String()
}

func lookup(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}
