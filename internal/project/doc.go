// Package project holds the scene graph and its persistence.
//
// Scenes own ordered cuts; cuts reference assets by id only, and the assets
// themselves live in a flat cache owned by the Project. Group membership is an
// external table (group id -> cut ids), never a back-pointer on a cut, so
// deleting cuts can never leave dangling references.
//
// The package also implements the load-time path resolver and the
// missing-asset recovery flow: loading never fails on absent files, it
// returns the partially-resolved graph plus a queue of missing references
// for the caller to decide on.
package project
