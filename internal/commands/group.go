package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"scenedeck/internal/project"
)

// GroupCuts gathers cuts into one group. Cuts already in another group are
// moved; undo restores every prior membership.
type GroupCuts struct {
	Project *project.Project
	GroupID string // generated when empty
	CutIDs  []string

	priorGroups map[string][]string
}

func (c *GroupCuts) Description() string {
	return fmt.Sprintf("group %d cuts", len(c.CutIDs))
}

func (c *GroupCuts) Execute(context.Context) error {
	if len(c.CutIDs) < 2 {
		return fmt.Errorf("a group needs at least two cuts, got %d", len(c.CutIDs))
	}
	if c.GroupID == "" {
		c.GroupID = uuid.NewString()
	}

	c.priorGroups = map[string][]string{}
	for _, cutID := range c.CutIDs {
		if prior, ok := c.Project.GroupOf(cutID); ok {
			if _, seen := c.priorGroups[prior]; !seen {
				c.priorGroups[prior] = c.Project.GroupMembers(prior)
			}
		}
	}

	c.Project.SetGroup(c.GroupID, c.CutIDs)
	return nil
}

func (c *GroupCuts) Undo(context.Context) error {
	c.Project.DissolveGroup(c.GroupID)
	for groupID, members := range c.priorGroups {
		if groupID == c.GroupID {
			continue
		}
		c.Project.SetGroup(groupID, members)
	}
	return nil
}

// DissolveGroup ungroups a set of cuts; undo reforms the group with the
// same membership order.
type DissolveGroup struct {
	Project *project.Project
	GroupID string

	members []string
}

func (c *DissolveGroup) Description() string {
	return fmt.Sprintf("dissolve group %s", c.GroupID)
}

func (c *DissolveGroup) Execute(context.Context) error {
	members := c.Project.DissolveGroup(c.GroupID)
	if len(members) == 0 {
		return fmt.Errorf("group %s not found", c.GroupID)
	}
	c.members = members
	return nil
}

func (c *DissolveGroup) Undo(context.Context) error {
	c.Project.SetGroup(c.GroupID, c.members)
	return nil
}
