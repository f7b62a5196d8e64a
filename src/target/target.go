// Package target parses backup destination URIs into an output path
// plus encoding selection.
package target

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Target represents a parsed backup destination.
// Examples: dir:/backups/witcher3, zip:/backups/witcher3.zip
type Target struct {
	// Raw is the original input string.
	Raw string
	// Scheme is "dir" or "zip".
	Scheme string
	// Path is the cleaned destination path.
	Path string
}

// SupportedSchemes lists the schemes the parser accepts.
var SupportedSchemes = map[string]struct{}{
	"dir": {},
	"zip": {},
}

// Parse parses a destination like "dir:/path" or "zip:/path.zip". A
// bare path with no scheme is accepted too: a .zip extension selects
// archive output, anything else a directory.
func Parse(raw string) (Target, error) {
	t := Target{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return t, fmt.Errorf("destination must not be empty; expected 'dir:/path' or 'zip:/path.zip'")
	}

	scheme := ""
	val := s
	if i := strings.Index(s, ":"); i > 1 { // leave Windows drive letters alone
		maybe := strings.ToLower(s[:i])
		if _, ok := SupportedSchemes[maybe]; ok {
			scheme = maybe
			val = s[i+1:]
		}
	}
	if scheme == "" {
		if strings.EqualFold(filepath.Ext(val), ".zip") {
			scheme = "zip"
		} else {
			scheme = "dir"
		}
	}
	if strings.TrimSpace(val) == "" {
		return t, fmt.Errorf("destination path must not be empty in %q", raw)
	}

	t.Scheme = scheme
	t.Path = filepath.Clean(val)
	return t, nil
}

// IsArchive reports whether the destination selects archive output.
func (t Target) IsArchive() bool { return t.Scheme == "zip" }

// String returns a canonical string form of the target.
func (t Target) String() string {
	if t.Scheme == "" {
		return t.Raw
	}
	return fmt.Sprintf("%s:%s", t.Scheme, t.Path)
}
