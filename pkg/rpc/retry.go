package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

const (
	defaultMaxAttempts = 4
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxBackoff  = 5 * time.Second
)

// JSON-RPC codes a node returns while it is behind or briefly unavailable.
const (
	rpcCodeBlockNotAvailable = -32004
	rpcCodeNodeUnhealthy     = -32005
)

type RetryOptions struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration

	// Logger receives a debug line per retried attempt. Optional.
	Logger *slog.Logger
}

// WithRetry wraps a JSON-RPC client so that calls failing with transient
// transport or server errors are retried with exponential backoff.
func WithRetry(inner solanarpc.JSONRPCClient, opt *RetryOptions) solanarpc.JSONRPCClient {
	if opt == nil {
		opt = &RetryOptions{}
	}
	o := *opt
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = defaultBaseBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = defaultMaxBackoff
	}
	return &retryingJSONRPCClient{inner: inner, opt: o}
}

type retryingJSONRPCClient struct {
	inner solanarpc.JSONRPCClient
	opt   RetryOptions
}

func (c *retryingJSONRPCClient) CallForInto(ctx context.Context, out any, method string, params []any) error {
	_, err := doRetry(ctx, c.opt, method, func() (struct{}, error) {
		return struct{}{}, c.inner.CallForInto(ctx, out, method, params)
	})
	return err
}

func (c *retryingJSONRPCClient) CallWithCallback(ctx context.Context, method string, params []any, callback func(*http.Request, *http.Response) error) error {
	_, err := doRetry(ctx, c.opt, method, func() (struct{}, error) {
		return struct{}{}, c.inner.CallWithCallback(ctx, method, params, callback)
	})
	return err
}

func (c *retryingJSONRPCClient) CallBatch(ctx context.Context, requests jsonrpc.RPCRequests) (jsonrpc.RPCResponses, error) {
	return doRetry(ctx, c.opt, "batch", func() (jsonrpc.RPCResponses, error) {
		return c.inner.CallBatch(ctx, requests)
	})
}

func doRetry[T any](ctx context.Context, opt RetryOptions, method string, f func() (T, error)) (T, error) {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     opt.BaseBackoff,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         opt.MaxBackoff,
	}
	res, err := backoff.Retry(ctx, func() (T, error) {
		res, err := f()
		if err != nil && !isRetryableJSONRPC(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(opt.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			if opt.Logger != nil {
				opt.Logger.Debug("rpc: retrying call", "method", method, "backoff", next, "error", err)
			}
		}),
	)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return res, err
}

func isRetryableJSONRPC(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "use of closed network connection") {
		return true
	}

	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case rpcCodeBlockNotAvailable, rpcCodeNodeUnhealthy:
			return true
		}
		return false
	}

	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return false
	}

	return false
}
