package fsgate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestHashMatchesSHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.bin")
	content := []byte("scenedeck hash test content")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	gw := NewLocal()
	got, err := gw.Hash(context.Background(), path)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	sum := sha256.Sum256(content)
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Errorf("hash = %s, want %s", got, want)
	}
}

func TestHashMissingFile(t *testing.T) {
	gw := NewLocal()
	if _, err := gw.Hash(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCopyFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "nested", "dst.bin")
	content := []byte("copy me, verify me")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	gw := NewLocal()
	if err := gw.CopyFile(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}

	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(copied) != string(content) {
		t.Errorf("content mismatch: %q", copied)
	}
}

func TestMoveToTrashWritesSidecar(t *testing.T) {
	dir := t.TempDir()
	victim := filepath.Join(dir, "old.png")
	trashDir := filepath.Join(dir, ".trash")
	if err := os.WriteFile(victim, []byte("stale"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	gw := NewLocal()
	meta := TrashMeta{AssetID: "asset-1", Reason: "reimport"}
	if err := gw.MoveToTrash(context.Background(), victim, trashDir, meta); err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}

	if gw.PathExists(victim) {
		t.Error("original file should be gone")
	}
	if !gw.PathExists(filepath.Join(trashDir, "old.png")) {
		t.Error("trashed file missing")
	}

	raw, err := os.ReadFile(filepath.Join(trashDir, "old.png.meta.json"))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	var decoded TrashMeta
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal sidecar: %v", err)
	}
	if decoded.AssetID != "asset-1" || decoded.Reason != "reimport" {
		t.Errorf("sidecar = %+v", decoded)
	}
	if decoded.TrashedAt.IsZero() {
		t.Error("TrashedAt should be stamped")
	}
	if decoded.OriginalPath != victim {
		t.Errorf("original path = %q, want %q", decoded.OriginalPath, victim)
	}
}

func TestMoveToTrashKeepsPriorEntries(t *testing.T) {
	dir := t.TempDir()
	trashDir := filepath.Join(dir, ".trash")
	gw := NewLocal()

	for i := 0; i < 2; i++ {
		victim := filepath.Join(dir, "dup.png")
		if err := os.WriteFile(victim, []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := gw.MoveToTrash(context.Background(), victim, trashDir, TrashMeta{Reason: "test"}); err != nil {
			t.Fatalf("MoveToTrash #%d: %v", i, err)
		}
	}

	if !gw.PathExists(filepath.Join(trashDir, "dup.png")) {
		t.Error("first trash entry missing")
	}
	if !gw.PathExists(filepath.Join(trashDir, "dup.png.1")) {
		t.Error("second trash entry should get a numeric suffix")
	}
}

func TestListDirectorySkipsDotfilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.mp4"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	gw := NewLocal()
	names, err := gw.ListDirectory(dir)
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}
	if len(names) != 2 || names[0] != "a.mp4" || names[1] != "b.png" {
		t.Errorf("names = %v", names)
	}
}
