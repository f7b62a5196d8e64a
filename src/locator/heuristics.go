package locator

import (
	"os"
	"path/filepath"
	"strings"

	"savevault/src/namematch"
	"savevault/src/platform"
)

// heuristicRoots probes the places Windows games conventionally put
// saves, using several spellings of the title, when the manifest has
// nothing. Probe order mirrors how often each location shows up in the
// wild.
func (l *Locator) heuristicRoots(title string, folders platform.Folders) []string {
	variants := candidateNames(title)
	var roots []string

	if folders.Documents != "" {
		roots = append(roots, probeNamed(filepath.Join(folders.Documents, "My Games"), variants)...)
		roots = append(roots, probeNamed(filepath.Join(folders.Documents, "Saved Games"), variants)...)
		roots = append(roots, probeNamed(folders.Documents, variants)...)
	}
	if folders.SavedGames != "" {
		roots = append(roots, probeNamed(folders.SavedGames, variants)...)
	}
	if folders.AppData != "" {
		roots = append(roots, probeNamed(folders.AppData, variants)...)
	}
	if folders.LocalAppData != "" {
		roots = append(roots, probeNamed(folders.LocalAppData, variants)...)
		roots = append(roots, probePackages(folders.LocalAppData, title)...)
	}
	if folders.LocalLow != "" {
		roots = append(roots, probeNamed(folders.LocalLow, variants)...)
	}

	roots = append(roots, steamSavePaths(title, folders)...)
	return roots
}

// candidateNames builds the folder-name spellings worth probing:
// sanitized raw title, sanitized normalized title, and space-collapsed
// forms of both. Order matters; duplicates collapse.
func candidateNames(title string) []string {
	var out []string
	seen := make(map[string]struct{})
	push := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	push(sanitizeName(title))
	push(sanitizeName(namematch.Normalize(title)))
	for _, name := range append([]string(nil), out...) {
		push(strings.ReplaceAll(name, " ", ""))
	}
	return out
}

// sanitizeName strips characters invalid in folder names and collapses
// whitespace runs.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func probeNamed(base string, names []string) []string {
	var out []string
	for _, name := range names {
		p := filepath.Join(base, name)
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// probePackages scans local AppData "Packages" for Windows Store
// containers whose package name contains the collapsed normalized
// title, then checks their cloud-sync and local-state subpaths.
func probePackages(localAppData, title string) []string {
	packagesRoot := filepath.Join(localAppData, "Packages")
	entries, err := os.ReadDir(packagesRoot)
	if err != nil {
		return nil
	}

	needle := strings.ReplaceAll(namematch.Normalize(title), " ", "")
	if needle == "" {
		return nil
	}

	var out []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !strings.Contains(strings.ToLower(entry.Name()), needle) {
			continue
		}
		pkg := filepath.Join(packagesRoot, entry.Name())
		for _, sub := range []string{
			filepath.Join("SystemAppData", "wgs"),
			filepath.Join("SystemAppData", "xgs"),
			"LocalState",
		} {
			candidate := filepath.Join(pkg, sub)
			if _, err := os.Stat(candidate); err == nil {
				out = append(out, candidate)
			}
		}
	}
	return out
}
