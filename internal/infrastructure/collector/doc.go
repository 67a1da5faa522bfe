// Package collector fetches web pages into the corpus: an HTTP fetcher that
// strips markup and normalizes text, plus a scheduler for periodic runs.
package collector
