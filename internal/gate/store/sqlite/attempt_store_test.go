package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/clubgate/clubgate/internal/gate/store"
	sqlitestore "github.com/clubgate/clubgate/internal/gate/store/sqlite"
)

var logT0 = time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)

func TestAttemptStore_AppendAndMostRecent(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	err := as.Append(ctx, store.AttemptRecord{
		CardUID:   "04AABBCC",
		Timestamp: logT0,
		Allowed:   true,
		Reason:    "OK",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	rec, err := as.MostRecent(ctx, "04AABBCC")
	if err != nil {
		t.Fatalf("MostRecent: %v", err)
	}
	if rec == nil {
		t.Fatal("expected an attempt")
	}
	if rec.CardUID != "04AABBCC" || !rec.Allowed || rec.Reason != "OK" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !rec.Timestamp.Equal(logT0) {
		t.Errorf("expected timestamp %v, got %v", logT0, rec.Timestamp)
	}
}

func TestAttemptStore_MostRecentNoneReturnsNil(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	as := sqlitestore.NewAttemptStore(conn, w)

	rec, err := as.MostRecent(context.Background(), "04AABBCC")
	if err != nil {
		t.Fatalf("MostRecent: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil, got %+v", rec)
	}
}

// MostRecent must return the latest attempt per card even when scans of
// different cards interleave.
func TestAttemptStore_MostRecentPerCardInterleaved(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	seq := []store.AttemptRecord{
		{CardUID: "CARD-A", Timestamp: logT0, Allowed: true, Reason: "OK"},
		{CardUID: "CARD-B", Timestamp: logT0.Add(1 * time.Minute), Allowed: false, Reason: "expired"},
		{CardUID: "CARD-A", Timestamp: logT0.Add(2 * time.Minute), Allowed: false, Reason: "already used 2 minutes ago"},
		{CardUID: "CARD-B", Timestamp: logT0.Add(3 * time.Minute), Allowed: true, Reason: "OK"},
	}
	for i, rec := range seq {
		if err := as.Append(ctx, rec); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	recA, err := as.MostRecent(ctx, "CARD-A")
	if err != nil || recA == nil {
		t.Fatalf("MostRecent A: rec=%v err=%v", recA, err)
	}
	if recA.Allowed || recA.Reason != "already used 2 minutes ago" {
		t.Errorf("unexpected latest for CARD-A: %+v", recA)
	}

	recB, err := as.MostRecent(ctx, "CARD-B")
	if err != nil || recB == nil {
		t.Fatalf("MostRecent B: rec=%v err=%v", recB, err)
	}
	if !recB.Allowed || !recB.Timestamp.Equal(logT0.Add(3*time.Minute)) {
		t.Errorf("unexpected latest for CARD-B: %+v", recB)
	}
}

// Same-millisecond rows resolve by insertion order.
func TestAttemptStore_SameTimestampResolvesByInsertionOrder(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	first := store.AttemptRecord{CardUID: "04AABBCC", Timestamp: logT0, Allowed: true, Reason: "OK"}
	second := store.AttemptRecord{CardUID: "04AABBCC", Timestamp: logT0, Allowed: false, Reason: "second"}
	if err := as.Append(ctx, first); err != nil {
		t.Fatalf("Append first: %v", err)
	}
	if err := as.Append(ctx, second); err != nil {
		t.Fatalf("Append second: %v", err)
	}

	rec, err := as.MostRecent(ctx, "04AABBCC")
	if err != nil || rec == nil {
		t.Fatalf("MostRecent: rec=%v err=%v", rec, err)
	}
	if rec.Reason != "second" {
		t.Errorf("expected the later insert, got %+v", rec)
	}
}

func TestAttemptStore_AppendOnly(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := as.Append(ctx, store.AttemptRecord{
			CardUID:   "04AABBCC",
			Timestamp: logT0.Add(time.Duration(i) * time.Second),
			Allowed:   true,
			Reason:    "OK",
		})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	var count int
	err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE uid = ?`, "04AABBCC",
	).Scan(&count)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 rows (append-only), got %d", count)
	}
}

func TestAttemptStore_PruneOlderThan(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := as.Append(ctx, store.AttemptRecord{
			CardUID:   "04AABBCC",
			Timestamp: logT0.Add(time.Duration(i) * 24 * time.Hour),
			Allowed:   true,
			Reason:    "OK",
		})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	deleted, err := as.PruneOlderThan(ctx, logT0.Add(3*24*time.Hour))
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 remaining, got %d", count)
	}
}
