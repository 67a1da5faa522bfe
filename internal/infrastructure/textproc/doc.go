// Package textproc cleans raw corpus text and computes lightweight
// linguistic statistics. Cleaning strips Project Gutenberg license
// envelopes, normalizes Unicode to NFC and collapses noisy whitespace;
// annotation produces sentence/token counts and lexical ratios used to
// screen documents before dataset preparation.
package textproc
