package history

import (
	"errors"
	"testing"
	"time"

	"github.com/wonny/valuator/internal/contracts"
)

func record(day int, signal contracts.Signal) contracts.ValuationRecord {
	return contracts.ValuationRecord{
		Date:   time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		Symbol: "TSLA",
		Signal: signal,
	}
}

func TestAppendOrdered(t *testing.T) {
	h := New()
	for day := 1; day <= 5; day++ {
		if err := h.Append(record(day, contracts.SignalNeutral)); err != nil {
			t.Fatalf("append day %d: %v", day, err)
		}
	}
	if h.Len() != 5 {
		t.Errorf("len = %d, want 5", h.Len())
	}
}

func TestAppendRejectsOutOfOrder(t *testing.T) {
	h := New()
	if err := h.Append(record(10, contracts.SignalNeutral)); err != nil {
		t.Fatal(err)
	}

	var ordErr *contracts.DataOrderingError
	if err := h.Append(record(5, contracts.SignalLong)); !errors.As(err, &ordErr) {
		t.Errorf("past date: expected DataOrderingError, got %v", err)
	}
	if err := h.Append(record(10, contracts.SignalLong)); !errors.As(err, &ordErr) {
		t.Errorf("duplicate date: expected DataOrderingError, got %v", err)
	}
	if h.Len() != 1 {
		t.Errorf("rejected records must not be stored, len = %d", h.Len())
	}
}

func TestLastN(t *testing.T) {
	h := New()
	for day := 1; day <= 10; day++ {
		if err := h.Append(record(day, contracts.SignalNeutral)); err != nil {
			t.Fatal(err)
		}
	}

	got := h.LastN(3)
	if len(got) != 3 {
		t.Fatalf("LastN(3) returned %d records", len(got))
	}
	if got[0].Date.Day() != 8 || got[2].Date.Day() != 10 {
		t.Errorf("LastN window wrong: %v .. %v", got[0].Date, got[2].Date)
	}

	// shorter history: fewer records, never an error
	if got := h.LastN(100); len(got) != 10 {
		t.Errorf("LastN(100) = %d records, want 10", len(got))
	}
	if got := h.LastN(0); got != nil {
		t.Errorf("LastN(0) = %v, want nil", got)
	}
}

func TestTransitions(t *testing.T) {
	h := New()
	signals := []contracts.Signal{
		contracts.SignalNeutral,
		contracts.SignalNeutral,
		contracts.SignalShort,
		contracts.SignalShort,
		contracts.SignalStrongShort,
		contracts.SignalNeutral,
	}
	for i, sig := range signals {
		if err := h.Append(record(i+1, sig)); err != nil {
			t.Fatal(err)
		}
	}

	got := h.Transitions()
	if len(got) != 3 {
		t.Fatalf("transitions = %d, want 3", len(got))
	}
	if got[0].From != contracts.SignalNeutral || got[0].To != contracts.SignalShort {
		t.Errorf("first transition = %v -> %v", got[0].From, got[0].To)
	}
	if got[2].To != contracts.SignalNeutral {
		t.Errorf("last transition to = %v, want NEUTRAL", got[2].To)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	h := New()
	if err := h.Append(record(1, contracts.SignalLong)); err != nil {
		t.Fatal(err)
	}

	all := h.All()
	all[0].Signal = contracts.SignalShort

	last, _ := h.Last()
	if last.Signal != contracts.SignalLong {
		t.Error("All() must not expose internal storage")
	}
}
