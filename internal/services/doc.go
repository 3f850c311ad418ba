// Package services defines the shared error taxonomy for the external
// collaborators (downloader, transcriber, translator) and the cache layer.
// Pipeline phases wrap failures with a sentinel marker so callers can
// classify errors without string matching.
package services
