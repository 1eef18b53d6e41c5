package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/pricefeed/smartcontract/sdk/go/pricefeed"
)

const defaultConcurrency = 8

// PriceFeedClient is the subset of the SDK client used for publishing.
type PriceFeedClient interface {
	GetPriceAccount(ctx context.Context, feedID uint64) (*pricefeed.PriceAccount, error)
	CreatePriceAccount(ctx context.Context, feedID uint64) (solana.Signature, *solanarpc.GetTransactionResult, error)
	SetPrice(ctx context.Context, feedID uint64, price float64) (solana.Signature, *solanarpc.GetTransactionResult, error)
}

type Config struct {
	Logger *slog.Logger
	Client PriceFeedClient
	Clock  clockwork.Clock
	Feeds  []Feed

	// Concurrency bounds the number of feeds published in parallel.
	Concurrency int

	// CreateMissing creates the price account of a feed before setting its
	// price when it does not exist yet.
	CreateMissing bool
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Client == nil {
		return errors.New("client is required")
	}
	if err := validateFeeds(c.Feeds); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	if c.Concurrency == 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Result is the outcome of publishing a single feed.
type Result struct {
	Feed      Feed
	Created   bool
	Signature solana.Signature
	Err       error
}

type Publisher struct {
	log  *slog.Logger
	cfg  *Config
	pool pond.ResultPool[Result]
}

func New(cfg *Config) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &Publisher{
		log:  cfg.Logger,
		cfg:  cfg,
		pool: pond.NewResultPool[Result](cfg.Concurrency),
	}, nil
}

// Publish sets the price of every configured feed, one task per feed. Feeds
// are independent: a failing feed is reported in its Result and does not
// stop the others. Results are returned in feed order.
func (p *Publisher) Publish(ctx context.Context) ([]Result, error) {
	start := p.cfg.Clock.Now()
	group := p.pool.NewGroupContext(ctx)

	for _, feed := range p.cfg.Feeds {
		group.Submit(func() Result {
			return p.publishFeed(ctx, feed)
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to publish feeds: %w", err)
	}
	MetricDuration.Observe(p.cfg.Clock.Since(start).Seconds())

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	p.log.Info("Published feeds", "feeds", len(results), "failed", failed, "duration", p.cfg.Clock.Since(start))

	return results, nil
}

// Run publishes every interval until the context is done.
func (p *Publisher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("interval must be positive")
	}

	ticker := p.cfg.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.Publish(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
}

func (p *Publisher) Close() {
	p.pool.StopAndWait()
}

func (p *Publisher) publishFeed(ctx context.Context, feed Feed) Result {
	result := Result{Feed: feed}

	if p.cfg.CreateMissing {
		_, err := p.cfg.Client.GetPriceAccount(ctx, feed.ID)
		switch {
		case errors.Is(err, pricefeed.ErrAccountNotFound):
			p.log.Debug("Creating price account", "feed", feed.ID, "name", feed.Name)
			_, _, err := p.cfg.Client.CreatePriceAccount(ctx, feed.ID)
			switch {
			case err == nil:
				result.Created = true
				MetricCreated.Inc()
			case errors.Is(err, pricefeed.ErrAccountAlreadyExists):
				p.log.Debug("Price account created concurrently", "feed", feed.ID)
			default:
				return p.fail(result, fmt.Errorf("failed to create price account: %w", err))
			}
		case err != nil:
			return p.fail(result, fmt.Errorf("failed to get price account: %w", err))
		}
	}

	sig, _, err := p.cfg.Client.SetPrice(ctx, feed.ID, feed.Price)
	if err != nil {
		return p.fail(result, fmt.Errorf("failed to set price: %w", err))
	}
	result.Signature = sig

	p.log.Debug("Published price", "feed", feed.ID, "name", feed.Name, "price", feed.Price, "signature", sig)
	MetricPublishes.WithLabelValues(ResultSuccess).Inc()
	return result
}

func (p *Publisher) fail(result Result, err error) Result {
	p.log.Warn("Failed to publish feed", "feed", result.Feed.ID, "name", result.Feed.Name, "error", err)
	MetricPublishes.WithLabelValues(ResultFailed).Inc()
	result.Err = err
	return result
}
