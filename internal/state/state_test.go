package state

import (
	"errors"
	"testing"
	"time"
)

var (
	units      = []string{"MAHROUS", "ALTAIRAT"}
	categories = []string{"finished", "plan"}
)

func TestStatusProgression(t *testing.T) {
	tr := NewTracker(units, categories)

	if got := tr.UnitStatus("MAHROUS"); got != StatusPending {
		t.Fatalf("initial status = %q", got)
	}

	changed, status, err := tr.Satisfy("MAHROUS", "finished", "a.kmz", time.Now(), SourceLive)
	if err != nil || !changed || status != StatusPartial {
		t.Fatalf("first satisfy: changed=%v status=%q err=%v", changed, status, err)
	}

	changed, status, err = tr.Satisfy("MAHROUS", "plan", "b.kmz", time.Now(), SourceLive)
	if err != nil || !changed || status != StatusSatisfied {
		t.Fatalf("second satisfy: changed=%v status=%q err=%v", changed, status, err)
	}

	if tr.UnitStatus("ALTAIRAT") != StatusPending {
		t.Error("unrelated unit moved")
	}
}

func TestRepeatDeliveryRefreshesOnly(t *testing.T) {
	tr := NewTracker(units, categories)

	first := time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	if _, _, err := tr.Satisfy("MAHROUS", "finished", "old.kmz", first, SourceLive); err != nil {
		t.Fatal(err)
	}
	changed, status, err := tr.Satisfy("MAHROUS", "finished", "new.kmz", second, SourceLive)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("repeat delivery reported as a new satisfaction")
	}
	if status != StatusPartial {
		t.Errorf("status = %q, want partial", status)
	}

	snap := tr.Snapshot()[0]
	entry := snap.Entries["finished"]
	if entry.Filename != "new.kmz" || !entry.At.Equal(second) {
		t.Errorf("entry not refreshed: %+v", entry)
	}
}

func TestUnsatisfiedAndCounts(t *testing.T) {
	tr := NewTracker(units, categories)

	if got := len(tr.Unsatisfied()); got != 4 {
		t.Fatalf("unsatisfied = %d, want 4", got)
	}
	if tr.Remaining() != 2 {
		t.Errorf("remaining = %d", tr.Remaining())
	}

	tr.Satisfy("MAHROUS", "finished", "a.kmz", time.Now(), SourceLive)
	tr.Satisfy("MAHROUS", "plan", "b.kmz", time.Now(), SourceLive)

	reqs := tr.Unsatisfied()
	if len(reqs) != 2 {
		t.Fatalf("unsatisfied = %v", reqs)
	}
	for _, req := range reqs {
		if req.Unit != "ALTAIRAT" {
			t.Errorf("unexpected requirement %+v", req)
		}
	}

	pending, partial, satisfied := tr.Counts()
	if pending != 1 || partial != 0 || satisfied != 1 {
		t.Errorf("counts = %d/%d/%d", pending, partial, satisfied)
	}
	if tr.AllSatisfied() {
		t.Error("grid reported complete")
	}

	tr.Satisfy("ALTAIRAT", "finished", "c.kmz", time.Now(), SourceBackfill)
	tr.Satisfy("ALTAIRAT", "plan", "d.kmz", time.Now(), SourceBackfill)
	if !tr.AllSatisfied() {
		t.Error("grid not complete after all deliveries")
	}
	if tr.Remaining() != 0 {
		t.Errorf("remaining = %d", tr.Remaining())
	}
}

func TestSatisfyUnknownNames(t *testing.T) {
	tr := NewTracker(units, categories)

	if _, _, err := tr.Satisfy("NOBODY", "finished", "a.kmz", time.Now(), SourceLive); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("err = %v, want ErrUnknownUnit", err)
	}
	if _, _, err := tr.Satisfy("MAHROUS", "extras", "a.kmz", time.Now(), SourceLive); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestSortRequirements(t *testing.T) {
	reqs := []Requirement{
		{Unit: "B", Category: "plan"},
		{Unit: "A", Category: "plan"},
		{Unit: "A", Category: "finished"},
	}
	SortRequirements(reqs)
	want := []Requirement{
		{Unit: "A", Category: "finished"},
		{Unit: "A", Category: "plan"},
		{Unit: "B", Category: "plan"},
	}
	for i := range want {
		if reqs[i] != want[i] {
			t.Fatalf("order = %v", reqs)
		}
	}
}
