// Package resolver looks up the service's public network address.
package resolver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/JakeFAU/trendwatch/internal/trends"
)

// Config controls the lookup endpoint and transport.
type Config struct {
	URL       string
	Timeout   time.Duration
	Proxy     string
	UserAgent string
}

// Resolver implements trends.AddressResolver against a plain-text IP echo service.
type Resolver struct {
	url    string
	client *resty.Client
}

// New constructs a Resolver.
func New(cfg Config) *Resolver {
	if cfg.URL == "" {
		cfg.URL = "https://api.ipify.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
	}
	return &Resolver{url: cfg.URL, client: client}
}

// Resolve returns the caller's public address as reported by the echo service.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	resp, err := r.client.R().SetContext(ctx).Get(r.url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", trends.ErrNetworkResolution, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: lookup returned %s", trends.ErrNetworkResolution, resp.Status())
	}
	addr := strings.TrimSpace(resp.String())
	if net.ParseIP(addr) == nil {
		return "", fmt.Errorf("%w: unexpected lookup body %q", trends.ErrNetworkResolution, addr)
	}
	return addr, nil
}
