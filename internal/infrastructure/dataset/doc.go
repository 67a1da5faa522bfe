// Package dataset turns an encoded corpus into fixed-length next-token
// prediction examples stored as snappy-compressed shards with a JSON
// manifest. The manifest carries a checksum of the source token stream so
// checkpoints can be matched to the exact data they were trained on.
package dataset
