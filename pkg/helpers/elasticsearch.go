package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(esConfig(addrs, username, password, nil))
}

func esConfig(addrs []string, username, password string, transport http.RoundTripper) elasticsearch.Config {
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		}
	}
	return elasticsearch.Config{
		Addresses:    addrs,
		Username:     username,
		Password:     password,
		Transport:    transport,
		DisableRetry: true,
	}
}

// NewESClientWithTransport is used by tests to point the client at an httptest server.
func NewESClientWithTransport(addrs []string, transport http.RoundTripper) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(esConfig(addrs, "", "", transport))
}
