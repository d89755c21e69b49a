// Package vault implements the content-addressed asset store.
//
// A vault is a self-contained directory holding the project document, asset
// files named by content hash, a persisted asset index, a metadata sidecar,
// and a trash area for displaced files. The Importer deduplicates by sha256:
// byte-identical content is stored at most once regardless of how many cuts
// reference it. The Index is the durable id -> {hash, filename, usage} map;
// its on-disk ordering is normalized to storyline order on every save.
//
// Import failures are non-fatal to callers: an asset that cannot be brought
// under vault management falls back to its original absolute path.
package vault
