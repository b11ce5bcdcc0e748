package download

// Package download implements the download orchestration engine: probing a
// URL's encoding catalog, selecting an encoding for a requested quality,
// enforcing one in-flight operation per user, caching probe results between
// the info and download phases, and managing temp file lifecycle.
