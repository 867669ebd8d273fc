package scoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/wonny/valuator/internal/contracts"
)

// replayWarmup is the shortest prefix worth scoring; below it every
// category is undefined anyway.
const replayWarmup = 30

// Replay scores every day of the series, each from its own trailing window
// only. Fundamentals are omitted: today's ratios applied to past dates
// would leak future information into the replay. Days whose window leaves
// every category undefined are skipped, not fabricated.
func (s *Scorer) Replay(symbol string, bars []contracts.PriceBar) ([]contracts.ValuationRecord, error) {
	if err := contracts.ValidateBars(bars); err != nil {
		return nil, err
	}
	if len(bars) < replayWarmup {
		return nil, &contracts.InsufficientHistoryError{
			Date: lastDate(bars),
			Bars: len(bars),
		}
	}

	records := make([]contracts.ValuationRecord, 0, len(bars)-replayWarmup+1)
	for i := replayWarmup; i <= len(bars); i++ {
		rec, err := s.Score(symbol, bars[:i], contracts.FundamentalSnapshot{})
		if err != nil {
			var insufficient *contracts.InsufficientHistoryError
			if errors.As(err, &insufficient) {
				continue
			}
			return nil, fmt.Errorf("replay at %s: %w", bars[i-1].Date.Format("2006-01-02"), err)
		}
		records = append(records, *rec)
	}

	if len(records) == 0 {
		return nil, &contracts.InsufficientHistoryError{
			Date: lastDate(bars),
			Bars: len(bars),
		}
	}
	return records, nil
}

func lastDate(bars []contracts.PriceBar) time.Time {
	if len(bars) == 0 {
		return time.Time{}
	}
	return bars[len(bars)-1].Date
}
