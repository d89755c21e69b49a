// Package media wraps the external inspection tools behind the narrow
// Extractor interface the asset store consumes.
//
// The production implementation shells out to ffprobe for duration and
// dimensions and to ffmpeg for thumbnail frames. Both are opaque
// collaborators; nothing else in the repository parses media containers.
package media
