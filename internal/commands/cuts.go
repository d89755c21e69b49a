package commands

import (
	"context"
	"fmt"

	"scenedeck/internal/project"
)

// AddCut inserts a cut into a scene at a given position. Undo removes it.
type AddCut struct {
	Project *project.Project
	SceneID string
	Cut     project.Cut
	Index   int // insertion position; clamped to the scene bounds
}

func (c *AddCut) Description() string {
	return fmt.Sprintf("add cut %s", c.Cut.ID)
}

func (c *AddCut) Execute(context.Context) error {
	scene, ok := c.Project.Scene(c.SceneID)
	if !ok {
		return fmt.Errorf("scene %s not found", c.SceneID)
	}
	scene.InsertCut(c.Cut, c.Index)
	return nil
}

func (c *AddCut) Undo(context.Context) error {
	scene, ok := c.Project.Scene(c.SceneID)
	if !ok {
		return fmt.Errorf("scene %s not found", c.SceneID)
	}
	if _, _, removed := scene.RemoveCut(c.Cut.ID); !removed {
		return fmt.Errorf("cut %s not found", c.Cut.ID)
	}
	c.Project.PruneGroups()
	return nil
}

// RemoveCut deletes a cut from its scene, snapshotting the cut, its
// position, and its group membership so undo can reinsert faithfully.
type RemoveCut struct {
	Project *project.Project
	SceneID string
	CutID   string

	cut          project.Cut
	index        int
	groupID      string
	groupMembers []string
}

func (c *RemoveCut) Description() string {
	return fmt.Sprintf("remove cut %s", c.CutID)
}

func (c *RemoveCut) Execute(context.Context) error {
	scene, ok := c.Project.Scene(c.SceneID)
	if !ok {
		return fmt.Errorf("scene %s not found", c.SceneID)
	}

	if groupID, ok := c.Project.GroupOf(c.CutID); ok {
		c.groupID = groupID
		c.groupMembers = c.Project.GroupMembers(groupID)
	}

	cut, index, removed := scene.RemoveCut(c.CutID)
	if !removed {
		return fmt.Errorf("cut %s not found in scene %s", c.CutID, c.SceneID)
	}
	c.cut, c.index = cut, index
	c.Project.PruneGroups()
	return nil
}

func (c *RemoveCut) Undo(context.Context) error {
	scene, ok := c.Project.Scene(c.SceneID)
	if !ok {
		return fmt.Errorf("scene %s not found", c.SceneID)
	}
	scene.InsertCut(c.cut, c.index)
	if c.groupID != "" {
		c.Project.SetGroup(c.groupID, c.groupMembers)
	}
	return nil
}

// ReorderCut moves a cut between two positions in a scene. Both indices
// are stored so undo is the exact inverse move.
type ReorderCut struct {
	Project *project.Project
	SceneID string
	From    int
	To      int
}

func (c *ReorderCut) Description() string {
	return fmt.Sprintf("reorder cut %d -> %d", c.From, c.To)
}

func (c *ReorderCut) Execute(context.Context) error {
	scene, ok := c.Project.Scene(c.SceneID)
	if !ok {
		return fmt.Errorf("scene %s not found", c.SceneID)
	}
	return scene.MoveCut(c.From, c.To)
}

func (c *ReorderCut) Undo(context.Context) error {
	scene, ok := c.Project.Scene(c.SceneID)
	if !ok {
		return fmt.Errorf("scene %s not found", c.SceneID)
	}
	return scene.MoveCut(c.To, c.From)
}
