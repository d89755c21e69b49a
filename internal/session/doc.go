// Package session composes one open vault: lock, index, metadata, project
// document, importer, command engine, and autosave controller. The CLI
// drives everything through a Session so wiring lives in one place.
package session
