// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// validationFailure compiles schema and doc and returns the error from
// unifying them, which is how config loading produces CUE errors.
func validationFailure(t *testing.T, schema, doc string) error {
	t.Helper()

	ctx := cuecontext.New()
	schemaVal := ctx.CompileString(schema)
	if schemaVal.Err() != nil {
		t.Fatalf("Failed to compile schema: %v", schemaVal.Err())
	}
	docVal := ctx.CompileString(doc)
	if docVal.Err() != nil {
		t.Fatalf("Failed to compile document: %v", docVal.Err())
	}

	err := schemaVal.Unify(docVal).Validate(cue.Concrete(false))
	if err == nil {
		t.Fatal("expected the document to fail validation")
	}
	return err
}

func TestFormatError_Nil(t *testing.T) {
	t.Parallel()

	if err := FormatError(nil, "config.cue"); err != nil {
		t.Errorf("FormatError(nil) = %v, want nil", err)
	}
}

func TestFormatError_NonCUEError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk read failed")
	err := FormatError(cause, "config.cue")
	if err == nil {
		t.Fatal("FormatError() = nil, want wrapped error")
	}
	if !strings.Contains(err.Error(), "config.cue") {
		t.Errorf("FormatError() = %q, want file path included", err)
	}
	if !strings.Contains(err.Error(), "disk read failed") {
		t.Errorf("FormatError() = %q, want original message included", err)
	}
}

func TestFormatError_SingleFieldConflict(t *testing.T) {
	t.Parallel()

	cueErr := validationFailure(t, `backend: "discard" | "local"`, `backend: "ftp"`)

	err := FormatError(cueErr, "config.cue")
	if err == nil {
		t.Fatal("FormatError() = nil, want error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "config.cue: ") {
		t.Errorf("FormatError() = %q, want config.cue: prefix", msg)
	}
	if !strings.Contains(msg, "backend") {
		t.Errorf("FormatError() = %q, want offending path included", msg)
	}
}

func TestFormatError_MultipleFieldConflicts(t *testing.T) {
	t.Parallel()

	cueErr := validationFailure(t,
		`{backend: "discard" | "local", verbose: bool}`,
		`{backend: "ftp", verbose: "yes"}`)

	err := FormatError(cueErr, "config.cue")
	if err == nil {
		t.Fatal("FormatError() = nil, want error")
	}
	msg := err.Error()
	for _, want := range []string{"validation failed", "backend", "verbose"} {
		if !strings.Contains(msg, want) {
			t.Errorf("FormatError() = %q, want %q included", msg, want)
		}
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want string
	}{
		{name: "empty", path: nil, want: ""},
		{name: "single field", path: []string{"backend"}, want: "backend"},
		{name: "nested fields", path: []string{"s3", "bucket"}, want: "s3.bucket"},
		{name: "list index", path: []string{"extensions", "0"}, want: "extensions[0]"},
		{name: "field after index", path: []string{"targets", "2", "endpoint"}, want: "targets[2].endpoint"},
		{name: "indexes at two levels", path: []string{"items", "0", "values", "1"}, want: "items[0].values[1]"},
		{name: "leading number is a field", path: []string{"0", "x"}, want: "0.x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		max     int64
		wantErr bool
	}{
		{name: "well under the limit", size: 11, max: 100},
		{name: "exactly at the limit", size: 100, max: 100},
		{name: "one byte over", size: 101, max: 100, wantErr: true},
		{name: "empty file", size: 0, max: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckFileSize(make([]byte, tt.size), tt.max, "config.cue")
			if tt.wantErr {
				if err == nil {
					t.Fatal("CheckFileSize() = nil, want error")
				}
				for _, want := range []string{"config.cue", "101", "100"} {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("CheckFileSize() = %q, want %q included", err, want)
					}
				}
				return
			}
			if err != nil {
				t.Errorf("CheckFileSize() = %v, want nil", err)
			}
		})
	}
}
