// Package textgen defines the domain entities and contracts for model
// training, evaluation and text generation.
package textgen
