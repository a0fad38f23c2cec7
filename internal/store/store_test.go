package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSubmissionRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	at := time.Date(2025, 8, 30, 16, 20, 0, 0, time.UTC)
	id, err := s.RecordSubmission(ctx, Submission{
		SessionID:   "sess-1",
		Period:      "20250830",
		Unit:        "MAHROUS",
		Category:    "finished",
		Filename:    "mahros_finished_points_20250830.kmz",
		StoredPath:  "/data/202508/20250830/Finished points/MAHROUS_finished_points_and_tracks_20250830.kmz",
		StampedDate: "20250830",
		Strategy:    "fuzzy",
		Score:       0.91,
		Source:      "live",
		ReceivedAt:  at,
	})
	if err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}
	if id == 0 {
		t.Error("id not assigned")
	}

	subs, err := s.SubmissionsForPeriod(ctx, "20250830")
	if err != nil {
		t.Fatalf("SubmissionsForPeriod: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d submissions", len(subs))
	}
	got := subs[0]
	if got.Unit != "MAHROUS" || got.Strategy != "fuzzy" || !got.ReceivedAt.Equal(at) {
		t.Errorf("round trip mismatch: %+v", got)
	}

	other, err := s.SubmissionsForPeriod(ctx, "20250829")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("period filter leaked %d rows", len(other))
	}
}

func TestRejectionRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if _, err := s.RecordRejection(ctx, Rejection{
		SessionID: "sess-1",
		Period:    "20250830",
		Filename:  "unknown_team_20250830.kmz",
		Reason:    "no_identifier_match",
		BestScore: 0.41,
	}); err != nil {
		t.Fatalf("RecordRejection: %v", err)
	}

	rejs, err := s.RejectionsForPeriod(ctx, "20250830")
	if err != nil {
		t.Fatal(err)
	}
	if len(rejs) != 1 || rejs[0].Reason != "no_identifier_match" {
		t.Errorf("rejections = %+v", rejs)
	}
	if rejs[0].ReceivedAt.IsZero() {
		t.Error("received_at not defaulted")
	}
}

func TestSnapshotLatestWins(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if snap, err := s.LatestSnapshot(ctx, "20250830"); err != nil || snap != nil {
		t.Fatalf("empty period: snap=%v err=%v", snap, err)
	}

	for i, satisfied := range []int{3, 7} {
		_, err := s.RecordSnapshot(ctx, Snapshot{
			SessionID: "sess-1",
			Period:    "20250830",
			Pending:   10 - satisfied,
			Satisfied: satisfied,
			Payload:   map[string]int{"seq": i},
		})
		if err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	snap, err := s.LatestSnapshot(ctx, "20250830")
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil || snap.Satisfied != 7 {
		t.Fatalf("snapshot = %+v", snap)
	}
	var payload map[string]int
	if err := json.Unmarshal(snap.Payload.(json.RawMessage), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["seq"] != 1 {
		t.Errorf("payload = %v", payload)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordSubmission(context.Background(), Submission{
		SessionID: "a", Period: "20250830", Unit: "U", Category: "finished",
		Filename: "f.kmz", StampedDate: "20250830", Strategy: "exact", Source: "live",
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	subs, err := s2.SubmissionsForPeriod(context.Background(), "20250830")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 {
		t.Errorf("got %d submissions after reopen", len(subs))
	}
}
