// Package ffmpeg wraps the external ffmpeg and ffprobe binaries used to
// produce platform renditions.
//
// The Transformer interface is the seam between the pipeline and the
// concrete tool: one call takes a downloaded source and a rendition
// profile and yields the transformed file, or an error classified as a
// per-asset failure. Tests substitute the subprocess launcher through
// the package-level commandContext variable.
package ffmpeg
