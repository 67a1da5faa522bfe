// Package corpus defines the domain entities and contracts for corpus
// ingestion: the curated Gutenberg catalog, collected documents and their
// linguistic annotations.
package corpus
