// Package model implements a small GPT-style decoder-only transformer with
// manual backpropagation, Adam/SGD optimizers, autoregressive sampling and a
// binary checkpoint format. Everything runs on the CPU over float64 tensors;
// the package favors clarity over throughput and is sized for corpus-scale
// experiments rather than production serving.
package model
