// SPDX-License-Identifier: MPL-2.0

// Package config loads and persists pyship settings, stored as CUE and
// surfaced through Viper.
//
// The config file lives at ~/.config/pyship/config.cue on Linux (or the
// XDG equivalent), ~/Library/Application Support/pyship/config.cue on
// macOS, and %APPDATA%\pyship\config.cue on Windows. Files are validated
// against the embedded schema (config_schema.cue) before use, so typos
// and type mismatches fail with pointed errors instead of being silently
// ignored.
//
// Settings cover backend selection, source matching (extensions and
// excluded directory names), per-backend connection details, and UI
// preferences. Credentials are deliberately absent: they come from the
// environment at run time (see LoadCredentials).
package config
