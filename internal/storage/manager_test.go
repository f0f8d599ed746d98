package storage

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/onboard-hub/backend/internal/services"
)

func TestIngestAndGet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	content := "Name,Email\nAlice,alice@corp.com\n"
	info, err := store.Ingest(context.Background(), "roster.csv", int64(len(content)), strings.NewReader(content))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if info.ID == "" || info.Name != "roster.csv" || info.Size != int64(len(content)) {
		t.Errorf("unexpected file info: %+v", info)
	}

	path, err := store.GetFilePath(info.ID)
	if err != nil {
		t.Fatalf("GetFilePath: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != content {
		t.Errorf("stored content mismatch")
	}
}

func TestIngestSizeMismatch(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())

	_, err := store.Ingest(context.Background(), "roster.csv", 999, strings.NewReader("short"))
	var stageErr *services.StageError
	if !errors.As(err, &stageErr) || stageErr.Kind != services.KindIngest {
		t.Fatalf("expected ingest StageError, got %v", err)
	}
}

func TestListOrderAndLimit(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		if _, err := store.Ingest(context.Background(), name, 0, strings.NewReader("x")); err != nil {
			t.Fatalf("Ingest %s: %v", name, err)
		}
	}

	list, err := store.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len = %d, want 2", len(list))
	}
}

func TestDelete(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())
	info, _ := store.Ingest(context.Background(), "roster.csv", 0, strings.NewReader("x"))

	if err := store.Delete(info.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(info.ID); err == nil {
		t.Error("Get succeeded after delete")
	}
	if err := store.Delete(info.ID); err == nil {
		t.Error("second delete should fail")
	}
}
