package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// inTx runs fn in a committed transaction and fails the test on error.
func inTx(t *testing.T, s *Store, fn func(ctx context.Context, tx *Tx) error) {
	t.Helper()
	ctx := context.Background()
	if err := s.WithTx(ctx, func(tx *Tx) error { return fn(ctx, tx) }); err != nil {
		t.Fatalf("WithTx() failed: %v", err)
	}
}

// seedClassResult creates event → list → class → class result and returns the
// class result id.
func seedClassResult(t *testing.T, s *Store) (classID, classResultID int64) {
	t.Helper()
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		eventID, _, err := tx.FindOrCreateEvent(ctx, Event{Name: "Spring Cup"})
		if err != nil {
			return err
		}
		listID, _, err := tx.FindOrCreateResultList(ctx, ResultList{
			EventID: eventID, Status: "Complete", Creator: "OE12", CreateTime: "2024-04-20T12:00:00.000Z",
		})
		if err != nil {
			return err
		}
		classID, _, err = tx.FindOrCreateEventClass(ctx, EventClass{EventID: eventID, Name: "H21"})
		if err != nil {
			return err
		}
		classResultID, _, err = tx.FindOrCreateClassResult(ctx, ClassResult{ResultListID: listID, EventClassID: classID})
		return err
	})
	return classID, classResultID
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to query indexes: %v", err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func float(v float64) *float64 { return &v }

func integer(v int) *int { return &v }
