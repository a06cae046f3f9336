package engine

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"arbscan/internal/symbols"
	"arbscan/logger"
	"arbscan/models"
	"arbscan/venue"
)

// enrich resolves deposit/withdraw transfer networks for every base coin in
// the admitted opportunities and fills the four chain columns on each row.
// The two venues are queried in parallel; within one venue lookups run
// sequentially behind a rate limiter honoring the venue's minimum call
// interval. Lookup failures degrade to empty strings, which the final
// incompleteness filter turns into dropped rows.
func enrich(ctx context.Context, ops []models.Opportunity, venues ...venue.Venue) error {
	if len(ops) == 0 {
		return nil
	}

	coins := make([]string, 0, len(ops))
	seen := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		coin := symbols.Base(op.Symbol)
		if _, ok := seen[coin]; ok {
			continue
		}
		seen[coin] = struct{}{}
		coins = append(coins, coin)
	}

	byVenue := make(map[string]map[string]models.ChainAvailability, len(venues))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, v := range venues {
		wg.Add(1)
		go func(v venue.Venue) {
			defer wg.Done()

			var limiter *rate.Limiter
			if interval := v.MinCallInterval(); interval > 0 {
				limiter = rate.NewLimiter(rate.Every(interval), 1)
			}

			chains := make(map[string]models.ChainAvailability, len(coins))
			for _, coin := range coins {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}
				avail, err := v.CoinNetworks(ctx, coin)
				if err != nil {
					logger.GetLogger().WithComponent("engine").WithError(err).
						WithFields(logger.Fields{"venue": v.Name(), "coin": coin}).
						Warn("coin network lookup failed")
					continue
				}
				chains[coin] = avail
			}

			mu.Lock()
			byVenue[v.Name()] = chains
			mu.Unlock()
		}(v)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for i := range ops {
		coin := symbols.Base(ops[i].Symbol)
		buy := byVenue[ops[i].BuyVenue][coin]
		sell := byVenue[ops[i].SellVenue][coin]
		ops[i].DepositChainsBuyVenue = strings.Join(buy.Deposit, ",")
		ops[i].WithdrawChainsBuyVenue = strings.Join(buy.Withdraw, ",")
		ops[i].DepositChainsSellVenue = strings.Join(sell.Deposit, ",")
		ops[i].WithdrawChainsSellVenue = strings.Join(sell.Withdraw, ",")
	}
	return nil
}
