package locator

import (
	"os"
	"path/filepath"
	"strings"

	"savevault/src/platform"
)

// resolveTemplate expands one manifest path template into zero or more
// existing paths. Placeholder tokens map to well-known folders; an
// unresolvable token drops the whole template. After token expansion,
// %VAR% environment references and a leading ~ are expanded, and
// wildcarded results go through glob matching while plain paths are
// checked for existence.
func resolveTemplate(tmpl string, folders platform.Folders) []string {
	path := tmpl
	missing := false

	replace := func(token, value string) {
		if !strings.Contains(path, token) {
			return
		}
		if value == "" {
			missing = true
			return
		}
		path = strings.ReplaceAll(path, token, value)
	}

	replace("<home>", folders.Home)
	replace("<winDocuments>", folders.Documents)
	replace("<documents>", folders.Documents)
	replace("<winAppData>", folders.AppData)
	replace("<winLocalAppData>", folders.LocalAppData)
	replace("<winLocalAppDataLow>", folders.LocalLow)
	replace("<winLocalLow>", folders.LocalLow)
	replace("<winSavedGames>", folders.SavedGames)
	replace("<winPublic>", folders.Public)
	replace("<winPublicDocuments>", folders.PublicDocuments)
	replace("<winProgramData>", folders.ProgramData)
	replace("<steam>", folders.Steam)
	replace("<steamUserData>", folders.SteamUserData)
	replace("<steamuserdata>", folders.SteamUserData)

	if missing {
		return nil
	}

	path = expandEnvRefs(path)
	path = expandTilde(path, folders.Home)
	path = filepath.FromSlash(path)

	if strings.ContainsAny(path, "*?") {
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil
		}
		return matches
	}

	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return []string{path}
}

// expandEnvRefs resolves %VAR% references. An unset variable keeps its
// literal %VAR% text, matching how Windows leaves unknown references
// alone.
func expandEnvRefs(path string) string {
	var out strings.Builder
	rest := path
	for {
		start := strings.IndexByte(rest, '%')
		if start < 0 {
			out.WriteString(rest)
			return out.String()
		}
		end := strings.IndexByte(rest[start+1:], '%')
		if end < 0 {
			out.WriteString(rest)
			return out.String()
		}
		name := rest[start+1 : start+1+end]
		out.WriteString(rest[:start])
		if name == "" {
			out.WriteByte('%')
		} else if val, ok := os.LookupEnv(name); ok {
			out.WriteString(val)
		} else {
			out.WriteByte('%')
			out.WriteString(name)
			out.WriteByte('%')
		}
		rest = rest[start+2+end:]
	}
}

func expandTilde(path, home string) string {
	if home == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	return home + path[1:]
}
