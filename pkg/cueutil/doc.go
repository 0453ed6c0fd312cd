// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE error-formatting utilities.
//
// CUE reports validation failures as error lists with structured paths.
// This package renders them as user-facing messages with JSON-path
// prefixes (e.g. "s3.bucket: expected string, got int") and provides
// file-size guards for files parsed with CUE.
package cueutil
