// SPDX-License-Identifier: MPL-2.0

// Package registrar provides the built-in ship.Registrar backends.
//
// Four backends cover the supported cluster arrangements:
//
//   - Discard logs registrations and drops them (dry runs).
//   - LocalDir copies files into a shared distribution directory (the
//     default).
//   - HTTP posts files to a cluster intake endpoint.
//   - S3 stages files in an S3-compatible bucket workers read from.
//
// All backends honor the flat-namespace contract: a file's base name is
// its remote identity, so two files sharing a base name shadow each other
// regardless of where they came from.
package registrar
