package history

import (
	"time"

	"github.com/wonny/valuator/internal/contracts"
)

// History is the append-only, date-indexed log of valuation records for one
// instrument. Inserts must arrive in chronological order; out-of-order or
// duplicate dates are rejected, never reordered.
type History struct {
	records []contracts.ValuationRecord
}

func New() *History {
	return &History{}
}

// Append adds a record after the current last date
func (h *History) Append(rec contracts.ValuationRecord) error {
	if n := len(h.records); n > 0 && !rec.Date.After(h.records[n-1].Date) {
		return &contracts.DataOrderingError{Index: n, Date: rec.Date}
	}
	h.records = append(h.records, rec)
	return nil
}

func (h *History) Len() int {
	return len(h.records)
}

// Last returns the most recent record
func (h *History) Last() (contracts.ValuationRecord, bool) {
	if len(h.records) == 0 {
		return contracts.ValuationRecord{}, false
	}
	return h.records[len(h.records)-1], true
}

// LastN returns the most recent n records in chronological order, fewer
// when the history is shorter. Never an error.
func (h *History) LastN(n int) []contracts.ValuationRecord {
	if n <= 0 {
		return nil
	}
	if n > len(h.records) {
		n = len(h.records)
	}
	out := make([]contracts.ValuationRecord, n)
	copy(out, h.records[len(h.records)-n:])
	return out
}

// All returns a copy of the full log in chronological order
func (h *History) All() []contracts.ValuationRecord {
	out := make([]contracts.ValuationRecord, len(h.records))
	copy(out, h.records)
	return out
}

// At returns the i-th record in chronological order
func (h *History) At(i int) (contracts.ValuationRecord, bool) {
	if i < 0 || i >= len(h.records) {
		return contracts.ValuationRecord{}, false
	}
	return h.records[i], true
}

// Transition marks a day whose signal differs from the previous day's
type Transition struct {
	Date time.Time        `json:"date"`
	From contracts.Signal `json:"from"`
	To   contracts.Signal `json:"to"`
}

// TransitionAt reports whether the record on the given date changed signal
// versus the previous record.
func (h *History) TransitionAt(date time.Time) bool {
	for i := 1; i < len(h.records); i++ {
		if h.records[i].Date.Equal(date) {
			return h.records[i].Signal != h.records[i-1].Signal
		}
	}
	return false
}

// Transitions lists every signal change in the log
func (h *History) Transitions() []Transition {
	var out []Transition
	for i := 1; i < len(h.records); i++ {
		if h.records[i].Signal != h.records[i-1].Signal {
			out = append(out, Transition{
				Date: h.records[i].Date,
				From: h.records[i-1].Signal,
				To:   h.records[i].Signal,
			})
		}
	}
	return out
}
