// Package history implements the reversible command engine behind every
// user-visible mutation. Commands carry both directions of their change;
// the engine owns the undo and redo stacks and the bounded history depth.
package history
