// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides comprehensive benchmarks for PGO profile generation.
// These benchmarks cover all hot paths in the pyship codebase:
//   - Shipfile manifest decoding and validation
//   - Source discovery and directory pruning
//   - Sub-module archive packaging
//   - End-to-end ship pipeline
//
// To generate a PGO profile, run:
//
//	go test -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
