package preflight

import (
	"context"

	"scenedeck/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the checks that apply to the given config and vault
// root. vaultRoot may be empty when no vault is open yet.
func RunAll(ctx context.Context, cfg *config.Config, vaultRoot string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if vaultRoot != "" {
		results = append(results, CheckDirectoryAccess("Vault root", vaultRoot))
		results = append(results, CheckDiskSpace("Vault free space", vaultRoot, minFreeBytes))
	}
	results = append(results, CheckDirectoryAccess("Catalog directory", cfg.Paths.CatalogDir))

	results = append(results, CheckBinary(Requirement{
		Name:        "FFprobe",
		Command:     cfg.FFprobeBinary(),
		Description: "Required for video metadata",
	}))
	results = append(results, CheckBinary(Requirement{
		Name:        "FFmpeg",
		Command:     cfg.FFmpegBinary(),
		Description: "Required for thumbnail generation",
		Optional:    true,
	}))

	return results
}

// Healthy reports whether every non-optional check passed.
func Healthy(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return false
		}
	}
	return true
}
