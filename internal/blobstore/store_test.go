package blobstore

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/database"
	"github.com/tahcohcat/liferpg-web/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "blobs.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStore(db)
}

// exerciseStore runs the contract every backend must honour.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if blob, err := s.Read(ctx, "demo", "missions.json"); err != nil || blob != nil {
		t.Fatalf("absent read: blob=%+v err=%v", blob, err)
	}
	if ok, err := s.Exists(ctx, "demo", "missions.json"); err != nil || ok {
		t.Fatalf("absent exists: ok=%v err=%v", ok, err)
	}

	v1, err := s.Create(ctx, "demo", "missions.json", []byte("[]\n"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ok, _ := s.Exists(ctx, "demo", "missions.json"); !ok {
		t.Fatalf("blob should exist after Create")
	}
	if ok, _ := s.Exists(ctx, "other", "missions.json"); ok {
		t.Fatalf("namespaces must not leak between users")
	}

	v2, err := s.Write(ctx, "demo", "missions.json", []byte(`[{"id":"a"}]`), v1)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if v2 == v1 {
		t.Fatalf("version unchanged after write")
	}

	if _, err := s.Write(ctx, "demo", "missions.json", []byte(`[]`), v1); !IsConflict(err) {
		t.Fatalf("stale write err=%v, want conflict", err)
	}

	blob, err := s.Read(ctx, "demo", "missions.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(blob.Content) != `[{"id":"a"}]` || blob.Version != v2 {
		t.Fatalf("conflicting write must not apply: content=%q version=%q", blob.Content, blob.Version)
	}

	// an empty line-log is a valid blob, not a missing one
	ev1, err := s.Create(ctx, "demo", "journal.jsonl", nil)
	if err != nil {
		t.Fatalf("Create empty: %v", err)
	}
	ev2, err := s.Write(ctx, "demo", "journal.jsonl", []byte{}, ev1)
	if err != nil {
		t.Fatalf("Write empty: %v", err)
	}
	blob, err = s.Read(ctx, "demo", "journal.jsonl")
	if err != nil || blob == nil || len(blob.Content) != 0 || blob.Version != ev2 {
		t.Fatalf("empty read: blob=%+v err=%v", blob, err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStoreContract(t *testing.T) {
	exerciseStore(t, newTestSQLiteStore(t))
}

func TestSQLiteStoreForeignToken(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, "demo", "profile.json", []byte("{}")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Write(ctx, "demo", "profile.json", []byte("{}"), "deadbeef"); !IsConflict(err) {
		t.Fatalf("non numeric token err=%v, want conflict", err)
	}
}

func TestBlobPath(t *testing.T) {
	if got := BlobPath("/data/", "demo", "journal.jsonl"); got != "data/demo/journal.jsonl" {
		t.Fatalf("BlobPath=%q", got)
	}
	if got := BlobPath("", "demo", "journal.jsonl"); got != "demo/journal.jsonl" {
		t.Fatalf("BlobPath without root=%q", got)
	}
}

func TestMissionCatalogRoundTrip(t *testing.T) {
	strength := "strength"
	end := models.NewDate(2025, time.June, 30)
	catalog := []models.Mission{
		{
			ID: "run", Name: "Run 5k", Description: "before work", Type: models.MissionDaily,
			BaseXP: 20, TokensReward: 2, AttributeID: &strength,
			StartDate: models.NewDate(2025, time.January, 1), EndDate: &end, Recurrence: models.RecurWeekdays,
		},
		{
			ID: "novel", Name: "Finish the novel", Type: models.MissionEpic,
			BaseXP: 500, StartDate: models.NewDate(2025, time.February, 3),
		},
	}

	data, err := EncodeDocument(catalog)
	if err != nil {
		t.Fatalf("EncodeDocument: %v", err)
	}
	var back []models.Mission
	if err := DecodeDocument(data, &back); err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if !reflect.DeepEqual(catalog, back) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, catalog)
	}
	if back[1].EndDate != nil || back[1].AttributeID != nil {
		t.Fatalf("null fields should stay nil")
	}
}

func TestLineLogCodec(t *testing.T) {
	empty, err := DecodeLines[models.JournalEntry](nil)
	if err != nil || len(empty) != 0 || empty == nil {
		t.Fatalf("empty content should decode to an empty list, got %v err=%v", empty, err)
	}
	if data, err := EncodeLines([]models.JournalEntry{}); err != nil || data == nil || len(data) != 0 {
		t.Fatalf("empty list should encode to empty non-nil content, got %#v err=%v", data, err)
	}

	entries := []models.MissionLogEntry{
		{MissionID: "run", Date: models.NewDate(2025, time.March, 3), Status: models.StatusCompleted, XPAwarded: 20},
		{MissionID: "run", Date: models.NewDate(2025, time.March, 4), Status: models.StatusCompleted, XPAwarded: 20},
	}
	data, err := EncodeLines(entries)
	if err != nil {
		t.Fatalf("EncodeLines: %v", err)
	}
	if n := len(splitLines(data)); n != 2 {
		t.Fatalf("want 2 lines, got %d: %q", n, data)
	}

	// tolerate a missing trailing newline and stray blank lines
	data = append([]byte("\n"), data[:len(data)-1]...)
	back, err := DecodeLines[models.MissionLogEntry](data)
	if err != nil {
		t.Fatalf("DecodeLines: %v", err)
	}
	if len(back) != 2 || back[1].Date != entries[1].Date {
		t.Fatalf("decoded %+v", back)
	}

	if _, err := DecodeLines[models.MissionLogEntry]([]byte("{not json}\n")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func splitLines(b []byte) []string {
	var out []string
	start := 0
	for i, c := range b {
		if c == '\n' {
			out = append(out, string(b[start:i]))
			start = i + 1
		}
	}
	return out
}
