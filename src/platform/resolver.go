// Package platform abstracts the OS-specific well-known folder lookups
// the save locator depends on. The locator's algorithm stays
// platform-agnostic given a Resolver; tests inject a fixture resolver
// rooted in a temp directory.
package platform

import (
	"os"
	"path/filepath"
)

// Folders carries every well-known location a path template or
// heuristic probe can reference. Empty string means "not resolvable on
// this system"; templates referencing an unresolvable folder are
// dropped, probes against one are skipped.
type Folders struct {
	Home            string
	Documents       string
	AppData         string // roaming
	LocalAppData    string
	LocalLow        string
	SavedGames      string
	Public          string
	PublicDocuments string
	ProgramData     string
	Steam           string // Steam install root
	SteamUserData   string // <Steam>/userdata
}

// Resolver supplies the well-known folders for one platform.
type Resolver interface {
	Folders() Folders
}

// Static is a Resolver over a fixed Folders value. Useful for tests and
// for callers that resolve once up front.
type Static struct{ F Folders }

func (s Static) Folders() Folders { return s.F }

// Noop resolves nothing; every folder comes back empty.
type Noop struct{}

func (Noop) Folders() Folders { return Folders{} }

// Default builds a resolver from the current environment: home-relative
// Windows conventions plus the usual environment variables, and the
// first Steam install root that exists on disk.
func Default() Resolver {
	var f Folders
	if home, err := os.UserHomeDir(); err == nil {
		f.Home = home
		f.Documents = filepath.Join(home, "Documents")
		f.AppData = filepath.Join(home, "AppData", "Roaming")
		f.LocalAppData = filepath.Join(home, "AppData", "Local")
		f.LocalLow = filepath.Join(home, "AppData", "LocalLow")
		f.SavedGames = filepath.Join(home, "Saved Games")
	}
	if v := os.Getenv("APPDATA"); v != "" {
		f.AppData = v
	}
	if v := os.Getenv("LOCALAPPDATA"); v != "" {
		f.LocalAppData = v
		f.LocalLow = filepath.Join(filepath.Dir(v), "LocalLow")
	}
	if v := os.Getenv("PUBLIC"); v != "" {
		f.Public = v
		f.PublicDocuments = filepath.Join(v, "Documents")
	}
	if v := os.Getenv("ProgramData"); v != "" {
		f.ProgramData = v
	}
	f.Steam = findSteamRoot(f)
	if f.Steam != "" {
		f.SteamUserData = filepath.Join(f.Steam, "userdata")
	}
	return Static{F: f}
}

// findSteamRoot probes the conventional install locations. The registry
// query used on Windows builds is a capability this core does not
// carry; the fallback paths cover the default installers.
func findSteamRoot(f Folders) string {
	candidates := []string{
		`C:\Program Files (x86)\Steam`,
		`C:\Program Files\Steam`,
	}
	if f.Home != "" {
		candidates = append(candidates,
			filepath.Join(f.Home, ".local", "share", "Steam"),
			filepath.Join(f.Home, ".steam", "steam"),
		)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return ""
}
