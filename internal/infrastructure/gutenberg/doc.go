// Package gutenberg downloads the curated French-literature corpus from
// Project Gutenberg with retries, a resume check on existing files and a
// JSON metadata summary per run.
package gutenberg
