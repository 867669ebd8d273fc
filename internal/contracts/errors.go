package contracts

import (
	"errors"
	"fmt"
	"time"
)

// ErrDataUnavailable means the provider returned an empty or partial series.
// Signal generation aborts entirely; no partial or stale signal is emitted.
var ErrDataUnavailable = errors.New("market data unavailable")

// DataOrderingError reports non-monotonic or duplicate dates in an input
// series. The input is rejected, never silently reordered.
type DataOrderingError struct {
	Index int
	Date  time.Time
}

func (e *DataOrderingError) Error() string {
	return fmt.Sprintf("bar %d (%s): dates must be strictly increasing", e.Index, e.Date.Format("2006-01-02"))
}

// InsufficientHistoryError means no scoring category had a single defined
// sub-term, so no score can be produced even in degraded mode.
type InsufficientHistoryError struct {
	Date time.Time
	Bars int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history at %s: %d bars leave every category undefined", e.Date.Format("2006-01-02"), e.Bars)
}

// InvalidPositionStateError indicates a backtest state-machine bug, e.g.
// opening a position while one is already open. Fatal; must not be swallowed.
type InvalidPositionStateError struct {
	Date  time.Time
	State string
	Event string
}

func (e *InvalidPositionStateError) Error() string {
	return fmt.Sprintf("invalid position state at %s: %s while %s", e.Date.Format("2006-01-02"), e.Event, e.State)
}
