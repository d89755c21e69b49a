package project

import (
	"fmt"

	"scenedeck/internal/vault"
)

// Asset is a piece of media content referenced by cuts. When
// VaultRelativePath is set the asset is vault-managed and portable across
// machines; Path is always the runtime-resolved absolute location.
type Asset struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Path              string          `json:"path"`
	VaultRelativePath string          `json:"vaultRelativePath,omitempty"`
	OriginalPath      string          `json:"originalPath,omitempty"`
	Hash              string          `json:"hash,omitempty"`
	Type              vault.AssetType `json:"type"`
	FileSize          int64           `json:"fileSize,omitempty"`
	Duration          float64         `json:"duration,omitempty"`
	Thumbnail         string          `json:"thumbnail,omitempty"`
}

// Managed reports whether the asset is vault-managed.
func (a *Asset) Managed() bool {
	return a != nil && a.VaultRelativePath != ""
}

// Cut is one storyline element. It references its asset weakly by id; the
// Asset is owned by the project's asset cache.
type Cut struct {
	ID          string  `json:"id"`
	AssetID     string  `json:"assetId"`
	DisplayTime float64 `json:"displayTime"`
}

// Scene owns an ordered sequence of cuts.
type Scene struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cuts []Cut  `json:"cuts"`
}

// SourcePanel is the persisted portion of the source panel state.
type SourcePanel struct {
	Folder string `json:"folder,omitempty"`
	SortBy string `json:"sortBy,omitempty"`
}

// UIState holds ephemeral fields that never participate in persistence or
// dirty detection.
type UIState struct {
	SelectedCutIDs []string
	ActiveDragCut  string
	PanelOpen      bool
}

// Project is the single mutable state object. It is owned by one command
// engine context and passed by handle into command handlers; there is no
// ambient singleton.
type Project struct {
	Name        string
	VaultPath   string
	Scenes      []*Scene
	SourcePanel SourcePanel

	// assets is the id-addressed asset cache; cuts only look assets up here.
	assets map[string]*Asset
	// groups maps group id to its ordered member cut ids. A cut belongs to
	// at most one group.
	groups map[string][]string

	UI UIState
}

// New returns an empty project bound to a vault path.
func New(name, vaultPath string) *Project {
	return &Project{
		Name:      name,
		VaultPath: vaultPath,
		assets:    map[string]*Asset{},
		groups:    map[string][]string{},
	}
}

// Asset looks up an asset by id.
func (p *Project) Asset(id string) (*Asset, bool) {
	a, ok := p.assets[id]
	return a, ok
}

// PutAsset inserts or replaces an asset in the cache.
func (p *Project) PutAsset(a *Asset) {
	if p.assets == nil {
		p.assets = map[string]*Asset{}
	}
	p.assets[a.ID] = a
}

// RemoveAsset drops an asset from the cache. The vault file and index entry
// are lifecycle-independent: dropping the cache entry never deletes content.
func (p *Project) RemoveAsset(id string) {
	delete(p.assets, id)
}

// Assets returns the asset cache contents (unordered).
func (p *Project) Assets() []*Asset {
	out := make([]*Asset, 0, len(p.assets))
	for _, a := range p.assets {
		out = append(out, a)
	}
	return out
}

// Scene looks up a scene by id.
func (p *Project) Scene(id string) (*Scene, bool) {
	for _, s := range p.Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// AddScene appends a scene to the storyline.
func (p *Project) AddScene(s *Scene) {
	p.Scenes = append(p.Scenes, s)
}

// CutIndex returns the position of a cut within a scene, or -1.
func (s *Scene) CutIndex(cutID string) int {
	for i, c := range s.Cuts {
		if c.ID == cutID {
			return i
		}
	}
	return -1
}

// InsertCut places a cut at index, clamping to the valid range.
func (s *Scene) InsertCut(c Cut, index int) {
	if index < 0 {
		index = 0
	}
	if index > len(s.Cuts) {
		index = len(s.Cuts)
	}
	s.Cuts = append(s.Cuts, Cut{})
	copy(s.Cuts[index+1:], s.Cuts[index:])
	s.Cuts[index] = c
}

// RemoveCut deletes the cut with the given id, returning the removed cut and
// its prior index so callers can snapshot it for undo.
func (s *Scene) RemoveCut(cutID string) (Cut, int, bool) {
	i := s.CutIndex(cutID)
	if i < 0 {
		return Cut{}, -1, false
	}
	removed := s.Cuts[i]
	s.Cuts = append(s.Cuts[:i], s.Cuts[i+1:]...)
	return removed, i, true
}

// MoveCut relocates the cut at from to position to within the scene.
func (s *Scene) MoveCut(from, to int) error {
	if from < 0 || from >= len(s.Cuts) || to < 0 || to >= len(s.Cuts) {
		return fmt.Errorf("move cut: index out of range (from %d, to %d, len %d)", from, to, len(s.Cuts))
	}
	cut := s.Cuts[from]
	s.Cuts = append(s.Cuts[:from], s.Cuts[from+1:]...)
	s.Cuts = append(s.Cuts, Cut{})
	copy(s.Cuts[to+1:], s.Cuts[to:])
	s.Cuts[to] = cut
	return nil
}

// GroupOf returns the group containing cutID, if any.
func (p *Project) GroupOf(cutID string) (string, bool) {
	for groupID, members := range p.groups {
		for _, id := range members {
			if id == cutID {
				return groupID, true
			}
		}
	}
	return "", false
}

// GroupMembers returns the ordered member cut ids of a group.
func (p *Project) GroupMembers(groupID string) []string {
	return append([]string(nil), p.groups[groupID]...)
}

// SetGroup records group membership, removing each cut from any prior group
// first so membership stays at most one group per cut.
func (p *Project) SetGroup(groupID string, cutIDs []string) {
	if p.groups == nil {
		p.groups = map[string][]string{}
	}
	for _, cutID := range cutIDs {
		if prior, ok := p.GroupOf(cutID); ok && prior != groupID {
			p.removeFromGroup(prior, cutID)
		}
	}
	p.groups[groupID] = append([]string(nil), cutIDs...)
}

// DissolveGroup removes a group, leaving its cuts ungrouped.
func (p *Project) DissolveGroup(groupID string) []string {
	members := p.groups[groupID]
	delete(p.groups, groupID)
	return members
}

func (p *Project) removeFromGroup(groupID, cutID string) {
	members := p.groups[groupID]
	for i, id := range members {
		if id == cutID {
			p.groups[groupID] = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(p.groups[groupID]) == 0 {
		delete(p.groups, groupID)
	}
}

// PruneGroups drops cut ids that no longer exist in any scene from every
// group. Group tables are recomputed views, so pruning after structural
// changes keeps them honest.
func (p *Project) PruneGroups() {
	live := map[string]struct{}{}
	for _, scene := range p.Scenes {
		for _, cut := range scene.Cuts {
			live[cut.ID] = struct{}{}
		}
	}
	for groupID, members := range p.groups {
		kept := members[:0]
		for _, id := range members {
			if _, ok := live[id]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(p.groups, groupID)
		} else {
			p.groups[groupID] = kept
		}
	}
}

// StorylineUsage walks scenes and cuts in storyline order and returns the
// ordered asset ids (first reference wins) plus the wholesale usage table
// consumed by the index save.
func (p *Project) StorylineUsage() ([]string, map[string][]vault.UsageRef) {
	var order []string
	seen := map[string]struct{}{}
	usage := map[string][]vault.UsageRef{}

	for _, scene := range p.Scenes {
		for i, cut := range scene.Cuts {
			if cut.AssetID == "" {
				continue
			}
			if _, ok := seen[cut.AssetID]; !ok {
				seen[cut.AssetID] = struct{}{}
				order = append(order, cut.AssetID)
			}
			usage[cut.AssetID] = append(usage[cut.AssetID], vault.UsageRef{
				SceneID: scene.ID,
				CutID:   cut.ID,
				Order:   i,
			})
		}
	}
	return order, usage
}
