package project

import (
	"testing"

	"scenedeck/internal/vault"
)

func sampleProject() *Project {
	p := New("Demo", "/tmp/vault")
	p.PutAsset(&Asset{ID: "a1", Name: "one.png", Path: "/abs/one.png", Type: vault.AssetImage})
	p.PutAsset(&Asset{ID: "a2", Name: "two.mp4", Path: "/abs/two.mp4", Type: vault.AssetVideo})
	p.AddScene(&Scene{ID: "s1", Name: "Opening", Cuts: []Cut{
		{ID: "c1", AssetID: "a1", DisplayTime: 3},
		{ID: "c2", AssetID: "a2", DisplayTime: 8},
		{ID: "c3", AssetID: "a1", DisplayTime: 2},
	}})
	p.AddScene(&Scene{ID: "s2", Name: "Finale", Cuts: []Cut{
		{ID: "c4", AssetID: "a2", DisplayTime: 5},
	}})
	return p
}

func TestSceneInsertRemoveMove(t *testing.T) {
	scene := &Scene{ID: "s"}
	scene.InsertCut(Cut{ID: "a"}, 0)
	scene.InsertCut(Cut{ID: "b"}, 1)
	scene.InsertCut(Cut{ID: "c"}, 99) // clamps to end

	if got := cutIDs(scene); got != "abc" {
		t.Fatalf("order = %s, want abc", got)
	}

	if err := scene.MoveCut(2, 0); err != nil {
		t.Fatalf("MoveCut: %v", err)
	}
	if got := cutIDs(scene); got != "cab" {
		t.Fatalf("order after move = %s, want cab", got)
	}

	removed, idx, ok := scene.RemoveCut("a")
	if !ok || removed.ID != "a" || idx != 1 {
		t.Fatalf("RemoveCut = %+v, %d, %v", removed, idx, ok)
	}

	// Reinsert at prior index restores the order, the undo contract.
	scene.InsertCut(removed, idx)
	if got := cutIDs(scene); got != "cab" {
		t.Fatalf("order after reinsert = %s, want cab", got)
	}

	if err := scene.MoveCut(0, 5); err == nil {
		t.Fatal("expected out-of-range move to fail")
	}
}

func cutIDs(s *Scene) string {
	out := ""
	for _, c := range s.Cuts {
		out += c.ID
	}
	return out
}

func TestStorylineUsageFirstReferenceWins(t *testing.T) {
	p := sampleProject()
	order, usage := p.StorylineUsage()

	if len(order) != 2 || order[0] != "a1" || order[1] != "a2" {
		t.Fatalf("order = %v", order)
	}
	if len(usage["a1"]) != 2 {
		t.Errorf("a1 refs = %d, want 2", len(usage["a1"]))
	}
	if len(usage["a2"]) != 2 {
		t.Errorf("a2 refs = %d, want 2", len(usage["a2"]))
	}
	ref := usage["a2"][1]
	if ref.SceneID != "s2" || ref.CutID != "c4" || ref.Order != 0 {
		t.Errorf("ref = %+v", ref)
	}
}

func TestGroupMembershipSingleGroupInvariant(t *testing.T) {
	p := sampleProject()
	p.SetGroup("g1", []string{"c1", "c2"})
	p.SetGroup("g2", []string{"c2", "c3"})

	if group, _ := p.GroupOf("c2"); group != "g2" {
		t.Errorf("c2 group = %s, want g2 (moved, not duplicated)", group)
	}
	if members := p.GroupMembers("g1"); len(members) != 1 || members[0] != "c1" {
		t.Errorf("g1 members = %v", members)
	}
	if _, ok := p.GroupOf("c4"); ok {
		t.Error("c4 should be ungrouped")
	}
}

func TestPruneGroupsDropsDeadCuts(t *testing.T) {
	p := sampleProject()
	p.SetGroup("g1", []string{"c1", "c2"})

	scene, _ := p.Scene("s1")
	scene.RemoveCut("c1")
	scene.RemoveCut("c2")
	p.PruneGroups()

	if _, ok := p.GroupOf("c1"); ok {
		t.Error("pruned cut still grouped")
	}
	if members := p.GroupMembers("g1"); len(members) != 0 {
		t.Errorf("empty group should be dissolved, members = %v", members)
	}
}

func TestDissolveGroup(t *testing.T) {
	p := sampleProject()
	p.SetGroup("g1", []string{"c1", "c3"})
	members := p.DissolveGroup("g1")
	if len(members) != 2 {
		t.Fatalf("members = %v", members)
	}
	if _, ok := p.GroupOf("c1"); ok {
		t.Error("cut still grouped after dissolve")
	}
}
