package commands

import (
	"context"
	"errors"
	"testing"

	"scenedeck/internal/fsgate"
	"scenedeck/internal/history"
	"scenedeck/internal/vault"
)

func TestTrashAssetMovesFileAndRetiresEntry(t *testing.T) {
	ctx := context.Background()
	p, imp, layout := importFixture(t)
	engine := history.NewEngine(10, nil)

	imported := &ImportAsset{Project: p, Importer: imp, SourcePath: writeSource(t, "photo.png", "pixels"), SceneID: "s1"}
	if err := engine.Execute(ctx, imported); err != nil {
		t.Fatalf("import: %v", err)
	}
	asset := imported.Result()

	cmd := &TrashAsset{Project: p, Importer: imp, Gateway: fsgate.NewLocal(), AssetID: asset.ID}
	if err := engine.Execute(ctx, cmd); err != nil {
		t.Fatalf("trash: %v", err)
	}

	if fsgate.NewLocal().PathExists(layout.AbsoluteFor(asset.VaultRelativePath)) {
		t.Error("vault file still present")
	}
	if _, ok := imp.Index().FindByID(asset.ID); ok {
		t.Error("index entry still present")
	}
	if _, ok := p.Asset(asset.ID); ok {
		t.Error("asset cache entry still present")
	}

	entries, err := vault.ListTrash(layout)
	if err != nil {
		t.Fatalf("ListTrash: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("trash entries = %d, want 1", len(entries))
	}
	if entries[0].Meta == nil || entries[0].Meta.AssetID != asset.ID {
		t.Errorf("provenance sidecar = %+v", entries[0].Meta)
	}
}

func TestTrashUndoRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	p, imp, _ := importFixture(t)
	engine := history.NewEngine(10, nil)

	imported := &ImportAsset{Project: p, Importer: imp, SourcePath: writeSource(t, "photo.png", "pixels"), SceneID: "s1"}
	if err := engine.Execute(ctx, imported); err != nil {
		t.Fatalf("import: %v", err)
	}
	cmd := &TrashAsset{Project: p, Importer: imp, Gateway: fsgate.NewLocal(), AssetID: imported.Result().ID}
	if err := engine.Execute(ctx, cmd); err != nil {
		t.Fatalf("trash: %v", err)
	}

	err := engine.Undo(ctx)
	if !errors.Is(err, history.ErrConfirmRequired) {
		t.Fatalf("err = %v, want ErrConfirmRequired", err)
	}
	// The refused undo stays available.
	if !engine.CanUndo() {
		t.Error("refused undo dropped from the stack")
	}
}

func TestTrashUndoRestoresWithConfirmation(t *testing.T) {
	ctx := context.Background()
	p, imp, layout := importFixture(t)
	engine := history.NewEngine(10, nil)

	imported := &ImportAsset{Project: p, Importer: imp, SourcePath: writeSource(t, "photo.png", "pixels"), SceneID: "s1"}
	if err := engine.Execute(ctx, imported); err != nil {
		t.Fatalf("import: %v", err)
	}
	asset := imported.Result()

	cmd := &TrashAsset{
		Project:  p,
		Importer: imp,
		Gateway:  fsgate.NewLocal(),
		AssetID:  asset.ID,
		Confirm:  func() bool { return true },
	}
	if err := engine.Execute(ctx, cmd); err != nil {
		t.Fatalf("trash: %v", err)
	}
	if err := engine.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}

	if !fsgate.NewLocal().PathExists(layout.AbsoluteFor(asset.VaultRelativePath)) {
		t.Error("vault file not restored")
	}
	if _, ok := imp.Index().FindByID(asset.ID); !ok {
		t.Error("index entry not restored")
	}
	if _, ok := p.Asset(asset.ID); !ok {
		t.Error("asset cache entry not restored")
	}
	entries, err := vault.ListTrash(layout)
	if err != nil {
		t.Fatalf("ListTrash: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("trash entries after restore = %d, want 0", len(entries))
	}
}

func TestTrashUnknownAssetFails(t *testing.T) {
	p, imp, _ := importFixture(t)
	cmd := &TrashAsset{Project: p, Importer: imp, Gateway: fsgate.NewLocal(), AssetID: "ghost"}
	if err := cmd.Execute(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
}
