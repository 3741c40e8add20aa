package table

import (
	"tablestakes/internal/ledger"
)

// accrueRake withholds rake from the pot at showdown (spec.md §4.3.5):
// capped percentage of the pot, only for real-currency tables, only once
// a flop has been seen this hand.
func accrueRake(cfg RakeConfig, pot int64, sawFlop bool) int64 {
	if !cfg.Currency.IsReal() || !sawFlop || pot <= 0 {
		return 0
	}
	rake := int64(float64(pot) * cfg.Rate)
	if cfg.Cap > 0 && rake > cfg.Cap {
		rake = cfg.Cap
	}
	if rake > pot {
		rake = pot
	}
	return rake
}

// flushEveryN defaults to 10 when unset, per spec.md §4.3.5.
func flushEveryN(cfg RakeConfig) int {
	if cfg.FlushEveryN <= 0 {
		return 10
	}
	return cfg.FlushEveryN
}

// splitRakeFlush computes the referrer/share-partner/house split of an
// accrued rake flush (spec.md §4.3.5: referrer and share-partner cuts
// computed first, remainder to the house). The hand counter that
// triggers a flush is a separate counter from blind-level bookkeeping —
// resolved in DESIGN.md's Open Question decisions as two independent
// counters, not shared state.
func splitRakeFlush(cfg RakeConfig, amount int64, referrerCut, shareCut float64) []PendingSideEffect {
	if amount <= 0 {
		return nil
	}
	var effects []PendingSideEffect
	remaining := amount

	if cfg.Referrer != nil && referrerCut > 0 {
		cut := int64(float64(amount) * referrerCut)
		if cut > remaining {
			cut = remaining
		}
		effects = append(effects, PendingSideEffect{Kind: "rake_referrer", Currency: cfg.Currency, Account: *cfg.Referrer, Amount: cut})
		remaining -= cut
	}
	if cfg.SharePartner != nil && shareCut > 0 {
		cut := int64(float64(amount) * shareCut)
		if cut > remaining {
			cut = remaining
		}
		effects = append(effects, PendingSideEffect{Kind: "rake_share", Currency: cfg.Currency, Account: *cfg.SharePartner, Amount: cut})
		remaining -= cut
	}
	effects = append(effects, PendingSideEffect{Kind: "rake_house", Currency: cfg.Currency, Account: ledger.Account("house"), Amount: remaining})
	return effects
}
