// Package engine detects cross-venue spot arbitrage opportunities. A scan
// fetches both venues' ticker snapshots, intersects the tradable symbol sets,
// computes bidirectional spreads, prices execution depth for the surviving
// rows, enriches them with transfer network availability and returns a ranked
// table. The engine is stateless per scan and safe to invoke concurrently for
// independent venue pairs.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	appconfig "arbscan/config"
	"arbscan/logger"
	"arbscan/models"
	"arbscan/venue"
)

// Engine orchestrates one venue pair scan end to end.
type Engine struct {
	cfg *appconfig.Config
	log *logger.Entry
}

// New creates an Engine bound to the given configuration.
func New(cfg *appconfig.Config) *Engine {
	return &Engine{
		cfg: cfg,
		log: logger.GetLogger().WithComponent("engine"),
	}
}

// Result is the outcome of one scan.
type Result struct {
	ScanID        string
	VenueA        string
	VenueB        string
	Policy        string
	StartedAt     time.Time
	Duration      time.Duration
	Opportunities []models.Opportunity
}

// Scan runs the full pipeline for a pair of venues and returns the enriched,
// ranked opportunity table. Identical venues are rejected before any fetch.
// Cancellation makes the scan fail as a whole; no partial table is returned.
func (e *Engine) Scan(ctx context.Context, a, b venue.Venue) (*Result, error) {
	if a.Name() == b.Name() {
		return nil, fmt.Errorf("cannot scan venue %q against itself", a.Name())
	}

	started := time.Now()
	log := e.log.WithFields(logger.Fields{"venue_a": a.Name(), "venue_b": b.Name()})

	quotesA, quotesB, err := fetchTickers(ctx, a, b)
	if err != nil {
		return nil, err
	}
	log.WithFields(logger.Fields{
		"symbols_a": len(quotesA),
		"symbols_b": len(quotesB),
	}).Debug("ticker snapshots fetched")

	policy := e.policyFor(a.Name(), b.Name())
	ops := buildOpportunities(policy, quotesA, quotesB, a.Name(), b.Name())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.priceDepth(ctx, ops, a, b)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ops = rankAndTruncate(ops, e.cfg.Engine.TopN)

	if err := enrich(ctx, ops, a, b); err != nil {
		return nil, err
	}

	complete := ops[:0]
	for _, op := range ops {
		if op.Complete() {
			complete = append(complete, op)
		}
	}
	ops = complete

	logger.IncrementScanCompleted()
	log.WithFields(logger.Fields{
		"policy":        policy,
		"opportunities": len(ops),
		"duration_ms":   time.Since(started).Milliseconds(),
	}).Info("scan completed")
	e.log.LogMetric("engine", "scan_opportunities", len(ops), "gauge",
		logger.Fields{"venue_a": a.Name(), "venue_b": b.Name()})

	return &Result{
		ScanID:        uuid.NewString(),
		VenueA:        a.Name(),
		VenueB:        b.Name(),
		Policy:        policy,
		StartedAt:     started,
		Duration:      time.Since(started),
		Opportunities: ops,
	}, nil
}

// policyFor selects the filter policy. A venue marked last_price_only forces
// the last-price policy regardless of the configured default, since its
// quotes carry no true bid/ask.
func (e *Engine) policyFor(nameA, nameB string) string {
	if e.cfg.Venues.ByName(nameA).LastPriceOnly || e.cfg.Venues.ByName(nameB).LastPriceOnly {
		return appconfig.PolicyLastPrice
	}
	return e.cfg.Engine.Policy
}

// fetchTickers loads both venues' snapshots concurrently. Either failure is
// structural and fails the scan.
func fetchTickers(ctx context.Context, a, b venue.Venue) (map[string]models.Quote, map[string]models.Quote, error) {
	var (
		wg               sync.WaitGroup
		quotesA, quotesB map[string]models.Quote
		errA, errB       error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		quotesA, errA = a.Tickers(ctx)
	}()
	go func() {
		defer wg.Done()
		quotesB, errB = b.Tickers(ctx)
	}()
	wg.Wait()

	if errA != nil {
		return nil, nil, fmt.Errorf("fetch %s tickers: %w", a.Name(), errA)
	}
	if errB != nil {
		return nil, nil, fmt.Errorf("fetch %s tickers: %w", b.Name(), errB)
	}
	return quotesA, quotesB, nil
}

// priceDepth fills the mean fill price and fill volume columns by walking the
// buy venue's ask book and the sell venue's bid book. Fetch failures leave
// the row unfilled; the incompleteness filter drops it later.
func (e *Engine) priceDepth(ctx context.Context, ops []models.Opportunity, a, b venue.Venue) {
	byName := map[string]venue.Venue{a.Name(): a, b.Name(): b}

	for i := range ops {
		buy, sell := byName[ops[i].BuyVenue], byName[ops[i].SellVenue]

		asks, err := buy.Depth(ctx, ops[i].Symbol, models.SideAsks)
		if err != nil {
			e.log.WithError(err).WithFields(logger.Fields{
				"venue": buy.Name(), "symbol": ops[i].Symbol,
			}).Warn("buy-side depth fetch failed")
			continue
		}
		bids, err := sell.Depth(ctx, ops[i].Symbol, models.SideBids)
		if err != nil {
			e.log.WithError(err).WithFields(logger.Fields{
				"venue": sell.Name(), "symbol": ops[i].Symbol,
			}).Warn("sell-side depth fetch failed")
			continue
		}

		if res := meanFillPriceN(asks, e.cfg.Engine.DepthLevels); res.OK {
			ops[i].MeanBuyFillPrice = res.Price
			ops[i].BuyFillVolume = res.Volume
		}
		if res := meanFillPriceN(bids, e.cfg.Engine.DepthLevels); res.OK {
			ops[i].MeanSellFillPrice = res.Price
			ops[i].SellFillVolume = res.Volume
		}
	}
}
