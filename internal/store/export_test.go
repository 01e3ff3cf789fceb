package store

import (
	"context"
	"testing"
	"time"

	"github.com/rcliao/mind-note/internal/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	a, _ := src.Create(ctx, sampleParams())
	b, _ := src.Create(ctx, CreateParams{Refined: "Idea.", Tags: []string{"#idea"}, Context: "Idea", OriginalText: "idea"})
	gone, _ := src.Create(ctx, sampleParams())
	src.Delete(ctx, DeleteParams{ID: gone.ID})

	exported, err := src.ExportAll(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("expected 2 exported memos, got %d", len(exported))
	}
	if exported[0].ID != a.ID || exported[1].ID != b.ID {
		t.Errorf("expected oldest first")
	}

	onlyIdea, _ := src.ExportAll(ctx, "Idea")
	if len(onlyIdea) != 1 {
		t.Errorf("expected context filter to keep 1, got %d", len(onlyIdea))
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, exported)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}
	got, err := dst.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get imported: %v", err)
	}
	if !got.CreatedAt.Equal(a.CreatedAt) || got.Refined != a.Refined {
		t.Errorf("imported memo changed: %+v", got)
	}

	n, err = dst.Import(ctx, exported)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if n != 0 {
		t.Errorf("expected duplicates skipped, got %d imported", n)
	}
}

func TestImportAssignsMissingFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.Import(ctx, []model.Memo{{
		Refined: "Hello.", Tags: []string{"#memo"}, Context: "Memory Archive", OriginalText: "hello",
	}})
	if err != nil || n != 1 {
		t.Fatalf("import: n=%d err=%v", n, err)
	}
	all, _ := s.List(ctx, ListParams{})
	m := all.Memos[0]
	if m.ID == "" || m.Version != 1 || m.Language != "en" {
		t.Errorf("expected defaults applied: %+v", m)
	}
	if time.Since(m.CreatedAt) > time.Minute {
		t.Errorf("expected created_at near now, got %v", m.CreatedAt)
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Import(ctx, []model.Memo{
		{Refined: "ok", Tags: []string{"#a"}, Context: "Idea", OriginalText: "ok"},
		{Refined: "", Tags: []string{"#a"}, Context: "Idea", OriginalText: "bad"},
	})
	if err == nil {
		t.Fatal("expected error for invalid memo")
	}
	all, _ := s.List(ctx, ListParams{})
	if all.Total != 0 {
		t.Errorf("expected import to roll back, got %d memos", all.Total)
	}
}

func TestArchiveOperationsThroughInterface(t *testing.T) {
	ctx := context.Background()
	var st Store = newTestStore(t)

	n, err := st.Import(ctx, []model.Memo{{
		ID:           "01J9ZQ3K8Y6V1S2T3U4V5W6X7Y",
		Refined:      "Idea.",
		Tags:         []string{"#idea"},
		Context:      "Idea",
		OriginalText: "idea",
		Language:     "en",
	}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 imported, got %d", n)
	}

	exported, err := st.ExportAll(ctx, "Idea")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(exported) != 1 || exported[0].ID != "01J9ZQ3K8Y6V1S2T3U4V5W6X7Y" {
		t.Errorf("unexpected export: %+v", exported)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ActiveMemos != 1 {
		t.Errorf("expected 1 active memo, got %d", stats.ActiveMemos)
	}
}
