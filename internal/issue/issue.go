// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	BaseDirNotFoundId Id = iota + 1
	ShipfileNotFoundId
	ShipfileParseErrorId
	NoSourcesFoundId
	ArchiveBuildFailedId
	HookFailedId
	RegistrarUnreachableId
	BucketAccessDeniedId
	ConfigLoadFailedId
	InvalidBackendId
	UpgradeFailedId
)

type MarkdownMsg string

type HttpLink string

// Issue is a known failure mode with a Markdown help page attached.
type Issue struct {
	id       Id
	mdMsg    MarkdownMsg // rendered through glamour on display
	docLinks []HttpLink  // pyship documentation pages
	extLinks []HttpLink  // upstream or third-party references
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render produces the terminal-ready help text, appending a "See also"
// section when the issue carries reference links.
func (i *Issue) Render(stylePath string) (string, error) {
	var b strings.Builder
	b.WriteString(string(i.mdMsg))

	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		b.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			b.WriteString("- <")
			b.WriteString(string(link))
			b.WriteString(">\n")
		}
		for _, link := range i.extLinks {
			b.WriteString("- <")
			b.WriteString(string(link))
			b.WriteString(">\n")
		}
	}
	return render(b.String(), stylePath)
}

var (
	render = glamour.Render

	baseDirNotFoundIssue = &Issue{
		id: BaseDirNotFoundId,
		mdMsg: `
# Base directory not found!

The directory you asked pyship to ship does not exist or is not a directory.

## Things you can try:
- Check the path for typos:
~~~
$ ls -ld /path/to/project
~~~

- Ship the current directory instead:
~~~
$ pyship ship .
~~~

- Remember that relative paths are resolved against your working directory,
  not against the location of your shipfile.`,
	}

	shipfileNotFoundIssue = &Issue{
		id: ShipfileNotFoundId,
		mdMsg: `
# No pyship.toml found!

We looked for a pyship.toml manifest in the base directory but couldn't find one.

This is only a problem if you expected manifest settings to apply; without a
manifest, pyship ships every '.py' file using its built-in defaults.

## Things you can try:
- Create a manifest next to your sources:
~~~
$ cd /path/to/project
$ cat > pyship.toml <<'EOF'
extensions = [".py", ".pyi"]
exclude    = [".venv", "tests"]
EOF
~~~

- Or pass the settings on the command line:
~~~
$ pyship ship . --extensions .py,.pyi --exclude .venv
~~~`,
	}

	shipfileParseErrorIssue = &Issue{
		id: ShipfileParseErrorId,
		mdMsg: `
# Failed to parse pyship.toml!

Your manifest contains syntax errors or invalid settings.

## Common issues:
- Invalid TOML syntax (missing quotes, brackets, etc.)
- Unknown keys (pyship rejects keys it doesn't recognize)
- Extensions without a leading dot ('py' instead of '.py')
- Exclude entries containing path separators (only bare directory names are allowed)

## Things you can try:
- Check the error message above for the offending key or line
- Run with verbose mode for more details:
~~~
$ pyship --verbose ship .
~~~

## Example of a valid manifest:
~~~toml
extensions = [".py", ".pyi"]
exclude    = [".venv", "__pycache__", "tests"]

[hooks]
pre_ship = ["./scripts/gen_version.sh"]
~~~`,
	}

	noSourcesFoundIssue = &Issue{
		id: NoSourcesFoundId,
		mdMsg: `
# No Python sources found!

pyship scanned the base directory but found no files matching the configured
extensions.

Matching is exact and case-sensitive: a file matches only when its final
suffix equals one of the configured extensions, so 'job.PY' does not match
'.py' and 'archive.py.bak' does not match either.

## Things you can try:
- List what pyship would ship without registering anything:
~~~
$ pyship inspect /path/to/project
~~~

- Widen the extension list:
~~~
$ pyship ship . --extensions .py,.pyi,.pyx
~~~

- Check that your sources are not hidden behind an excluded directory name.`,
	}

	archiveBuildFailedIssue = &Issue{
		id: ArchiveBuildFailedId,
		mdMsg: `
# Failed to build submodule archive!

pyship could not write the zip archive for one of your package directories.

## Common causes:
- A source file was deleted or became unreadable mid-scan
- The workspace directory ran out of disk space
- File permissions prevent reading a source file

## Things you can try:
- Re-run the command; transient races with builds or editors resolve themselves
- Check free space where temporary files live:
~~~
$ df -h "${TMPDIR:-/tmp}"
~~~

- Point the workspace somewhere roomier:
~~~
$ pyship ship . --workspace-dir /var/tmp
~~~`,
	}

	hookFailedIssue = &Issue{
		id: HookFailedId,
		mdMsg: `
# Pre-ship hook failed!

One of the 'hooks.pre_ship' snippets in your manifest exited with a non-zero
status, so shipping was aborted before anything was registered.

Hooks run through pyship's built-in POSIX shell interpreter with the base
directory as the working directory and PYSHIP_BASE_DIR set in the environment.

## Things you can try:
- Run the snippet by hand from the base directory to see its output
- Fix or remove the failing entry in pyship.toml:
~~~toml
[hooks]
pre_ship = ["./scripts/gen_version.sh"]
~~~

- Skip hooks for a one-off run:
~~~
$ pyship ship . --no-hooks
~~~`,
	}

	registrarUnreachableIssue = &Issue{
		id: RegistrarUnreachableId,
		mdMsg: `
# Registration endpoint unreachable!

pyship could not deliver a file or archive to the configured backend.

## Things you can try:
- Check the endpoint in your config:
~~~
$ pyship config show
~~~

- Verify connectivity from this machine:
~~~
$ curl -sS -o /dev/null -w '%{http_code}\n' https://registry.example.com/healthz
~~~

- For the http backend, make sure PYSHIP_HTTP_TOKEN is set if the endpoint
  requires authentication
- For the s3 backend, check PYSHIP_S3_ACCESS_KEY and PYSHIP_S3_SECRET_KEY
- Rehearse without a backend at all:
~~~
$ pyship ship . --dry-run
~~~`,
	}

	bucketAccessDeniedIssue = &Issue{
		id: BucketAccessDeniedId,
		mdMsg: `
# Bucket access denied!

The object store rejected pyship's credentials or the bucket policy forbids
the operation.

## Things you can try:
- Confirm the credentials in your environment:
~~~
$ env | grep PYSHIP_S3
~~~

- Check that the configured bucket exists and your key may write to it
- If the bucket lives in a non-default region, set it explicitly:
~~~cue
s3: {
	region: "eu-west-1"
}
~~~

- Ask your cluster admin whether bucket creation is restricted; pyship
  creates the bucket on first use when it is allowed to.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config file exists but couldn't be parsed or validated.

## Config file location:
- Linux: ~/.config/pyship/config.cue
- macOS: ~/Library/Application Support/pyship/config.cue
- Windows: %APPDATA%\pyship\config.cue

## Things you can try:
- Print the location pyship is actually reading:
~~~
$ pyship config path
~~~

- Regenerate a fresh default config:
~~~
$ pyship config init
~~~

- Validate your CUE syntax; every field is checked against the built-in schema,
  so a typo in a key name is reported as a validation error.`,
	}

	invalidBackendIssue = &Issue{
		id: InvalidBackendId,
		mdMsg: `
# Invalid backend!

The registration backend you selected is not one pyship knows about.

## Available backends:
- **discard**: log each registration and drop it (dry runs)
- **local**: copy files into a distribution directory on this machine
- **http**: POST each file to a registration endpoint
- **s3**: upload each file to an S3-compatible object store

## Things you can try:
- Set the backend in your config:
~~~cue
backend: "local"
~~~

- Or override it per-invocation:
~~~
$ pyship ship . --backend s3
~~~`,
	}

	upgradeFailedIssue = &Issue{
		id: UpgradeFailedId,
		mdMsg: `
# Upgrade failed!

pyship could not replace its own binary with the latest release.

## Things you can try:
- If pyship came from a package manager, upgrade through it instead:
~~~
$ brew upgrade pyship
~~~

- If you installed with 'go install', pull the new version the same way:
~~~
$ go install github.com/pyship/pyship@latest
~~~

- GitHub rate limits unauthenticated API calls; set GITHUB_TOKEN and retry
- Check that the binary's directory is writable by your user:
~~~
$ ls -ld "$(dirname "$(command -v pyship)")"
~~~`,
	}

	issues = map[Id]*Issue{
		BaseDirNotFoundId:      baseDirNotFoundIssue,
		ShipfileNotFoundId:     shipfileNotFoundIssue,
		ShipfileParseErrorId:   shipfileParseErrorIssue,
		NoSourcesFoundId:       noSourcesFoundIssue,
		ArchiveBuildFailedId:   archiveBuildFailedIssue,
		HookFailedId:           hookFailedIssue,
		RegistrarUnreachableId: registrarUnreachableIssue,
		BucketAccessDeniedId:   bucketAccessDeniedIssue,
		ConfigLoadFailedId:     configLoadFailedIssue,
		InvalidBackendId:       invalidBackendIssue,
		UpgradeFailedId:        upgradeFailedIssue,
	}
)

// Values returns every registered issue in no particular order.
func Values() []*Issue {
	return maps.Values(issues)
}

// Get returns the issue registered under id, or nil for unknown ids.
func Get(id Id) *Issue {
	return issues[id]
}
