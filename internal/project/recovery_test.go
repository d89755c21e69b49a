package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scenedeck/internal/fsgate"
	"scenedeck/internal/media"
	"scenedeck/internal/vault"
)

// stubExtractor returns fixed metadata without touching ffprobe.
type stubExtractor struct {
	duration float64
}

func (s stubExtractor) ExtractVideoMetadata(context.Context, string) (media.VideoMetadata, error) {
	return media.VideoMetadata{Duration: s.duration, Width: 1280, Height: 720}, nil
}

func (s stubExtractor) GenerateThumbnail(context.Context, string, float64) ([]byte, error) {
	return []byte{0xff}, nil
}

func recoveryFixture(t *testing.T) (*Project, vault.Layout, []MissingAssetInfo) {
	t.Helper()
	layout, err := vault.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	p := New("Recovery", layout.Root)
	for i, id := range []string{"a1", "a2", "a3"} {
		rel := "assets/missing" + string(rune('0'+i)) + ".png"
		p.PutAsset(&Asset{
			ID:                id,
			Name:              "missing" + string(rune('0'+i)) + ".png",
			Path:              layout.AbsoluteFor(rel),
			VaultRelativePath: rel,
			Type:              vault.AssetImage,
		})
	}
	p.AddScene(&Scene{ID: "s1", Cuts: []Cut{
		{ID: "c1", AssetID: "a1", DisplayTime: 3},
		{ID: "c2", AssetID: "a2", DisplayTime: 3},
		{ID: "c3", AssetID: "a3", DisplayTime: 3},
	}})

	missing := NewResolver(fsgate.NewLocal(), layout, nil).Resolve(p)
	if len(missing) != 3 {
		t.Fatalf("missing = %d, want 3", len(missing))
	}
	return p, layout, missing
}

func newSession(p *Project, layout vault.Layout, missing []MissingAssetInfo, extractor media.Extractor) *RecoverySession {
	gw := fsgate.NewLocal()
	imp := vault.NewImporter(gw, layout, vault.NewIndex(), nil, nil)
	return NewRecoverySession(p, imp, extractor, gw, missing, nil)
}

func TestResolveReportsMissingAssetPerCut(t *testing.T) {
	layout, err := vault.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	p := New("One Missing", layout.Root)
	p.PutAsset(&Asset{ID: "a1", Name: "missing.png", Path: "assets/missing.png", Type: vault.AssetImage})
	p.AddScene(&Scene{ID: "s1", Cuts: []Cut{{ID: "c1", AssetID: "a1"}}})

	missing := NewResolver(fsgate.NewLocal(), layout, nil).Resolve(p)
	if len(missing) != 1 {
		t.Fatalf("missing = %d, want 1", len(missing))
	}
	if missing[0].CutID != "c1" || missing[0].SceneID != "s1" {
		t.Errorf("queue entry = %+v", missing[0])
	}
	if missing[0].Asset.VaultRelativePath != "assets/missing.png" {
		t.Errorf("raw vault-relative path not adopted: %+v", missing[0].Asset)
	}
}

func TestSkipAllLeavesSceneUntouched(t *testing.T) {
	p, layout, missing := recoveryFixture(t)
	session := newSession(p, layout, missing, nil)

	session.SkipAll()
	for _, item := range missing {
		if session.State(item.CutID) != StateDecided {
			t.Errorf("cut %s state = %v, want decided", item.CutID, session.State(item.CutID))
		}
	}

	result := session.Apply(context.Background())
	if result.Skipped != 3 || result.Deleted != 0 || result.Relinked != 0 {
		t.Fatalf("result = %+v", result)
	}
	scene, _ := p.Scene("s1")
	if len(scene.Cuts) != 3 {
		t.Errorf("scene mutated by skip-all: %d cuts", len(scene.Cuts))
	}
	for _, item := range missing {
		if session.State(item.CutID) != StateApplied {
			t.Errorf("cut %s not applied", item.CutID)
		}
	}
}

func TestUndecidedItemsDefaultToSkip(t *testing.T) {
	p, layout, missing := recoveryFixture(t)
	session := newSession(p, layout, missing, nil)

	result := session.Apply(context.Background())
	if result.Skipped != 3 {
		t.Fatalf("result = %+v", result)
	}
	scene, _ := p.Scene("s1")
	if len(scene.Cuts) != 3 {
		t.Errorf("scene mutated: %d cuts", len(scene.Cuts))
	}
}

func TestMixedDecisions(t *testing.T) {
	p, layout, missing := recoveryFixture(t)
	session := newSession(p, layout, missing, stubExtractor{duration: 12})

	replacement := filepath.Join(t.TempDir(), "found.png")
	if err := os.WriteFile(replacement, []byte("rediscovered"), 0o644); err != nil {
		t.Fatalf("write replacement: %v", err)
	}

	if err := session.Decide("c1", Delete{}); err != nil {
		t.Fatalf("Decide delete: %v", err)
	}
	if err := session.Decide("c2", Relink{NewPath: replacement}); err != nil {
		t.Fatalf("Decide relink: %v", err)
	}
	// c3 left pending: defaults to skip.

	result := session.Apply(context.Background())
	if len(result.Failures) != 0 {
		t.Fatalf("failures: %v", result.Failures)
	}
	if result.Deleted != 1 || result.Relinked != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}

	scene, _ := p.Scene("s1")
	if scene.CutIndex("c1") >= 0 {
		t.Error("deleted cut still present")
	}
	if scene.CutIndex("c3") < 0 {
		t.Error("skipped cut removed")
	}

	relinked, ok := p.Asset("a2")
	if !ok {
		t.Fatal("relinked asset missing from cache")
	}
	if relinked.Hash == "" || !vault.IsVaultRelative(relinked.VaultRelativePath) {
		t.Errorf("relinked asset not vault-managed: %+v", relinked)
	}
	if !fsgate.NewLocal().PathExists(relinked.Path) {
		t.Error("relinked asset file not in vault")
	}
}

func TestRelinkVideoRecomputesDisplayTime(t *testing.T) {
	layout, err := vault.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	p := New("Video", layout.Root)
	p.PutAsset(&Asset{
		ID:                "v1",
		Name:              "clip.mp4",
		Path:              layout.AbsoluteFor("assets/gone.mp4"),
		VaultRelativePath: "assets/gone.mp4",
		Type:              vault.AssetVideo,
	})
	p.AddScene(&Scene{ID: "s1", Cuts: []Cut{{ID: "c1", AssetID: "v1", DisplayTime: 5}}})

	missing := NewResolver(fsgate.NewLocal(), layout, nil).Resolve(p)
	if len(missing) != 1 {
		t.Fatalf("missing = %d", len(missing))
	}

	replacement := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(replacement, []byte("video bytes"), 0o644); err != nil {
		t.Fatalf("write replacement: %v", err)
	}

	session := newSession(p, layout, missing, stubExtractor{duration: 42})
	if err := session.Decide("c1", Relink{NewPath: replacement}); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	result := session.Apply(context.Background())
	if result.Relinked != 1 || len(result.Failures) != 0 {
		t.Fatalf("result = %+v", result)
	}

	scene, _ := p.Scene("s1")
	if scene.Cuts[0].DisplayTime != 42 {
		t.Errorf("display time = %v, want 42 (recomputed from duration)", scene.Cuts[0].DisplayTime)
	}
	asset, _ := p.Asset("v1")
	if asset.Duration != 42 {
		t.Errorf("asset duration = %v", asset.Duration)
	}
	if asset.Thumbnail == "" {
		t.Error("relink did not regenerate the thumbnail")
	}
	if _, err := os.Stat(layout.AbsoluteFor(asset.Thumbnail)); err != nil {
		t.Errorf("thumbnail file: %v", err)
	}
}

func TestRelinkFailureKeepsIndexEntry(t *testing.T) {
	layout, err := vault.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	gw := fsgate.NewLocal()
	imp := vault.NewImporter(gw, layout, vault.NewIndex(), nil, nil)

	src := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(src, []byte("pixels"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	imported, err := imp.Import(context.Background(), src, "a1", vault.BaseMetadata{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := os.Remove(imported.AbsolutePath); err != nil {
		t.Fatalf("remove vault file: %v", err)
	}

	p := New("Broken", layout.Root)
	p.PutAsset(&Asset{
		ID:                "a1",
		Name:              "photo.png",
		Path:              imported.AbsolutePath,
		VaultRelativePath: imported.RelativePath,
		Type:              vault.AssetImage,
	})
	p.AddScene(&Scene{ID: "s1", Cuts: []Cut{{ID: "c1", AssetID: "a1", DisplayTime: 3}}})

	missing := NewResolver(gw, layout, nil).Resolve(p)
	if len(missing) != 1 {
		t.Fatalf("missing = %d, want 1", len(missing))
	}

	session := NewRecoverySession(p, imp, nil, gw, missing, nil)
	if err := session.Decide("c1", Relink{NewPath: filepath.Join(t.TempDir(), "also-missing.png")}); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	result := session.Apply(context.Background())
	if len(result.Failures) != 1 {
		t.Fatalf("failures = %v", result.Failures)
	}

	// A failed relink leaves the item exactly as a skip would: the cut stays
	// and the index entry is not lost.
	entry, ok := imp.Index().FindByID("a1")
	if !ok {
		t.Fatal("index entry dropped by failed relink")
	}
	if entry.Hash != imported.Hash {
		t.Errorf("entry hash = %s, want %s", entry.Hash, imported.Hash)
	}
}

func TestRelinkFailureLeavesCutBrokenNotRemoved(t *testing.T) {
	p, layout, missing := recoveryFixture(t)
	session := newSession(p, layout, missing, nil)

	if err := session.Decide("c1", Relink{NewPath: filepath.Join(t.TempDir(), "still-missing.png")}); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	result := session.Apply(context.Background())
	if len(result.Failures) != 1 {
		t.Fatalf("failures = %v", result.Failures)
	}
	scene, _ := p.Scene("s1")
	if scene.CutIndex("c1") < 0 {
		t.Error("failed relink must not remove the cut")
	}
}

func TestDecideUnknownCut(t *testing.T) {
	p, layout, missing := recoveryFixture(t)
	session := newSession(p, layout, missing, nil)
	if err := session.Decide("nope", Skip{}); err == nil {
		t.Fatal("expected error for unknown cut")
	}
}
