package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	xproxy "golang.org/x/net/proxy"
)

// NewHTTPClient builds the pooled client used for backend calls.
// When proxyURL is a socks5:// or socks5h:// URL, public hosts are dialed
// through it; loopback and private addresses always connect directly.
// timeout == 0 leaves the client without an overall deadline.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	baseDialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tr := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 15 * time.Second,
		ForceAttemptHTTP2:   true,
		DialContext:         baseDialer.DialContext,
	}

	if proxyURL != "" {
		dialer, err := socksDialer(proxyURL, baseDialer)
		if err != nil {
			slog.Warn("httpclient: invalid proxy, dialing directly", slog.Any("error", err))
		} else {
			tr.DialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
				host, _, _ := net.SplitHostPort(address)
				if bypassProxy(host) {
					return baseDialer.DialContext(ctx, network, address)
				}
				return dialer.DialContext(ctx, network, address)
			}
			slog.Info("httpclient: socks5 proxy enabled", slog.String("proxy", redactProxy(proxyURL)))
		}
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}
}

// socksDialer parses a socks5 proxy URL into a context-aware dialer.
func socksDialer(proxyURL string, forward *net.Dialer) (xproxy.ContextDialer, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}

	var auth *xproxy.Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		auth = &xproxy.Auth{User: u.User.Username(), Password: pass}
	}

	d, err := xproxy.SOCKS5("tcp", u.Host, auth, forward)
	if err != nil {
		return nil, fmt.Errorf("socks5 dialer: %w", err)
	}
	cd, ok := d.(xproxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer does not support contexts")
	}
	return cd, nil
}

// bypassProxy reports whether host should be dialed without the proxy.
func bypassProxy(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate()
	}
	return false
}

func redactProxy(proxyURL string) string {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return "invalid"
	}
	return u.Redacted()
}
