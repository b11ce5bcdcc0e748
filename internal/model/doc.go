package model

// Package model defines domain data structures shared across the service:
// media encodings, probed video metadata, and the summaries returned to callers.
// Values are plain data; the download engine owns all mutation.
