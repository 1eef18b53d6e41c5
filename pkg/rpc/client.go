package rpc

import (
	"net"
	"net/http"
	"time"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/klauspost/compress/gzhttp"
)

const (
	defaultMaxIdleConnsPerHost = 9
	defaultTimeout             = 5 * time.Minute
	defaultKeepAlive           = 180 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
)

// NewWithRetries creates a Solana JSON-RPC client whose calls are retried on
// transient failures. Responses are transparently gzip-decoded.
func NewWithRetries(endpoint string, opt *RetryOptions) *solanarpc.Client {
	return NewWithHeadersAndRetries(endpoint, nil, opt)
}

// NewWithHeadersAndRetries is NewWithRetries with extra headers sent on every
// request, for providers that authenticate by header.
func NewWithHeadersAndRetries(endpoint string, headers map[string]string, opt *RetryOptions) *solanarpc.Client {
	inner := jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient:    newHTTP(),
		CustomHeaders: headers,
	})
	return solanarpc.NewWithCustomRPCClient(WithRetry(inner, opt))
}

func newHTTP() *http.Client {
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: gzhttp.Transport(newHTTPTransport()),
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		IdleConnTimeout:     defaultTimeout,
		MaxConnsPerHost:     defaultMaxIdleConnsPerHost,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		Proxy:               http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultTimeout,
			KeepAlive: defaultKeepAlive,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: defaultTLSHandshakeTimeout,
	}
}
