// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// These tests pin the embedded CUE schema to the Go structs it decodes
// into. A field added on one side without the other would otherwise be
// dropped silently at parse time.

// definitionFields returns the field names of a schema definition mapped
// to whether each field is optional.
func definitionFields(t *testing.T, def string) map[string]bool {
	t.Helper()

	ctx := cuecontext.New()
	schema := ctx.CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("compiling schema: %v", schema.Err())
	}
	val := schema.LookupPath(cue.ParsePath(def))
	if val.Err() != nil {
		t.Fatalf("looking up %s: %v", def, val.Err())
	}

	fields := make(map[string]bool)
	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("iterating %s fields: %v", def, err)
	}
	for iter.Next() {
		// Optional fields render with a "?" suffix.
		name := strings.TrimSuffix(iter.Selector().String(), "?")
		fields[name] = iter.IsOptional()
	}
	return fields
}

// jsonTagNames returns the JSON tag names of typ's exported fields mapped
// to whether the tag carries omitempty.
func jsonTagNames(t *testing.T, typ reflect.Type) map[string]bool {
	t.Helper()

	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		t.Fatalf("expected a struct type, got %s", typ.Kind())
	}

	fields := make(map[string]bool)
	for _, field := range reflect.VisibleFields(typ) {
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = slices.Contains(strings.Split(opts, ","), "omitempty")
	}
	return fields
}

func TestSchemaMatchesStructs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		def string
		typ reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#LocalConfig", reflect.TypeFor[LocalConfig]()},
		{"#HTTPConfig", reflect.TypeFor[HTTPConfig]()},
		{"#S3Config", reflect.TypeFor[S3Config]()},
		{"#UIConfig", reflect.TypeFor[UIConfig]()},
	}

	for _, tt := range tests {
		t.Run(strings.TrimPrefix(tt.def, "#"), func(t *testing.T) {
			t.Parallel()

			cueFields := definitionFields(t, tt.def)
			goFields := jsonTagNames(t, tt.typ)

			for field, optional := range cueFields {
				omitempty, ok := goFields[field]
				if !ok {
					t.Errorf("schema field %q has no JSON tag on %s", field, tt.typ)
					continue
				}
				if optional && !omitempty {
					t.Logf("note: schema field %q is optional but the Go tag lacks omitempty", field)
				}
			}
			for field := range goFields {
				if _, ok := cueFields[field]; !ok {
					t.Errorf("Go JSON tag %q has no field in %s", field, tt.def)
				}
			}
		})
	}
}

// validateAgainstSchema unifies src with #Config and validates the result
// as a complete document.
func validateAgainstSchema(t *testing.T, src string) error {
	t.Helper()

	ctx := cuecontext.New()
	schema := ctx.CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("compiling schema: %v", schema.Err())
	}

	doc := ctx.CompileString(src)
	if doc.Err() != nil {
		return doc.Err()
	}

	return schema.LookupPath(cue.ParsePath("#Config")).Unify(doc).Validate(cue.Concrete(true))
}

type schemaCase struct {
	name    string
	src     string
	wantErr bool
}

func runSchemaCases(t *testing.T, tests []schemaCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateAgainstSchema(t, tt.src)
			if tt.wantErr && err == nil {
				t.Error("validation passed, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validation failed: %v", err)
			}
		})
	}
}

func TestSchemaBackendEnum(t *testing.T) {
	t.Parallel()

	runSchemaCases(t, []schemaCase{
		{"discard accepted", `backend: "discard"`, false},
		{"local accepted", `backend: "local"`, false},
		{"http accepted", `backend: "http"`, false},
		{"s3 accepted", `backend: "s3"`, false},
		{"unknown backend rejected", `backend: "ftp"`, true},
		{"empty backend rejected", `backend: ""`, true},
		{"uppercase backend rejected", `backend: "LOCAL"`, true},
	})
}

func TestSchemaExtensionShape(t *testing.T) {
	t.Parallel()

	runSchemaCases(t, []schemaCase{
		{"py extension accepted", `extensions: [".py"]`, false},
		{"multiple extensions accepted", `extensions: [".py", ".pyi", ".so"]`, false},
		{"empty extension rejected", `extensions: [""]`, true},
		{"bare dot rejected", `extensions: ["."]`, true},
		{"dotless extension rejected", `extensions: ["py"]`, true},
		{"64-rune extension accepted", `extensions: [".` + strings.Repeat("a", 63) + `"]`, false},
		{"65-rune extension rejected", `extensions: [".` + strings.Repeat("a", 64) + `"]`, true},
	})
}

func TestSchemaExcludeNameShape(t *testing.T) {
	t.Parallel()

	runSchemaCases(t, []schemaCase{
		{"basename accepted", `exclude: ["__pycache__"]`, false},
		{"hidden dir accepted", `exclude: [".git"]`, false},
		{"empty name rejected", `exclude: [""]`, true},
		{"forward slash rejected", `exclude: ["a/b"]`, true},
		{"backslash rejected", `exclude: ["a\\b"]`, true},
		{"256-rune name accepted", `exclude: ["` + strings.Repeat("a", 256) + `"]`, false},
		{"257-rune name rejected", `exclude: ["` + strings.Repeat("a", 257) + `"]`, true},
	})
}

func TestSchemaDistDirLimits(t *testing.T) {
	t.Parallel()

	runSchemaCases(t, []schemaCase{
		{"empty string rejected", `local: dist_dir: ""`, true},
		{"relative path accepted", `local: dist_dir: "./dist"`, false},
		{"4096-char path accepted", `local: dist_dir: "` + strings.Repeat("a", 4096) + `"`, false},
		{"4097-char path rejected", `local: dist_dir: "` + strings.Repeat("a", 4097) + `"`, true},
	})
}

func TestSchemaS3Fields(t *testing.T) {
	t.Parallel()

	runSchemaCases(t, []schemaCase{
		{
			"full s3 block accepted",
			`s3: {endpoint: "minio.internal:9000", region: "us-east-1", bucket: "deps", prefix: "team", use_ssl: false}`,
			false,
		},
		{"empty bucket rejected", `s3: bucket: ""`, true},
		{"empty prefix accepted", `s3: prefix: ""`, false},
		{"65-rune region rejected", `s3: region: "` + strings.Repeat("a", 65) + `"`, true},
		{"non-bool use_ssl rejected", `s3: use_ssl: "yes"`, true},
	})
}

// Every file Save produces must be accepted by the same schema Load
// enforces.
func TestGeneratedCUEValidatesAgainstSchema(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"default config", DefaultConfig()},
		{
			"fully populated config",
			&Config{
				Backend:    BackendS3,
				Extensions: []Extension{".py", ".pyi"},
				Exclude:    []ExcludeName{"__pycache__", ".venv"},
				Local:      LocalConfig{DistDir: "/srv/pyship/dist"},
				HTTP:       HTTPConfig{Endpoint: "https://deps.example.com/register"},
				S3: S3Config{
					Endpoint: "minio.internal:9000",
					Region:   "eu-west-1",
					Bucket:   "pyship-artifacts",
					Prefix:   "team-etl",
					UseSSL:   true,
				},
				UI: UIConfig{ColorScheme: ColorSchemeLight, Verbose: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			generated := GenerateCUE(tt.cfg)
			if err := validateAgainstSchema(t, generated); err != nil {
				t.Errorf("generated CUE failed schema validation: %v\n%s", err, generated)
			}
		})
	}
}
