// Package fsgate is the narrow filesystem boundary the asset store depends on.
//
// Gateway covers hashing, verified copies, trash moves with provenance
// sidecars, existence checks, reads, and directory listings. The vault and
// resolver consume the interface so tests can substitute failing or recording
// implementations; Local is the production implementation.
package fsgate
