package platform

// Package platform integrates with the outside world: the yt-dlp binary that
// probes and fetches media, and the download directory on disk.
