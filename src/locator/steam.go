package locator

import (
	"os"
	"path/filepath"
	"strings"

	"savevault/src/namematch"
	"savevault/src/platform"
)

// Steam cloud saves live under <steam>/userdata/<user>/<appid>/remote.
// Matching a title to app ids means scanning every library's
// appmanifest_<id>.acf descriptors and scoring their names.
const steamMatchThreshold = 0.7

func steamSavePaths(title string, folders platform.Folders) []string {
	if folders.Steam == "" {
		return nil
	}

	libraries := steamLibraryPaths(folders.Steam)
	appIDs := steamAppIDs(title, libraries)
	if len(appIDs) == 0 {
		return nil
	}

	userdataRoot := filepath.Join(folders.Steam, "userdata")
	users, err := os.ReadDir(userdataRoot)
	if err != nil {
		return nil
	}

	var out []string
	for _, user := range users {
		if !user.IsDir() {
			continue
		}
		for _, appID := range appIDs {
			appRoot := filepath.Join(userdataRoot, user.Name(), appID)
			if _, err := os.Stat(appRoot); err != nil {
				continue
			}
			// Prefer the cloud-synced "remote" folder, fall back to
			// "local", else take the whole app folder.
			if remote := filepath.Join(appRoot, "remote"); exists(remote) {
				out = append(out, remote)
				continue
			}
			if local := filepath.Join(appRoot, "local"); exists(local) {
				out = append(out, local)
				continue
			}
			out = append(out, appRoot)
		}
	}
	return out
}

// steamLibraryPaths returns the install root plus every extra library
// listed in its libraryfolders.vdf descriptor, deduplicated in order.
func steamLibraryPaths(steamRoot string) []string {
	out := []string{steamRoot}
	seen := map[string]struct{}{steamRoot: {}}

	descriptor := filepath.Join(steamRoot, "steamapps", "libraryfolders.vdf")
	data, err := os.ReadFile(descriptor)
	if err != nil {
		return out
	}
	for _, line := range strings.Split(string(data), "\n") {
		if key, value, ok := vdfPair(line); ok && key == "path" {
			p := strings.ReplaceAll(value, `\\`, `\`)
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// steamAppIDs scans each library's app manifests for titles that score
// at least steamMatchThreshold against the target.
func steamAppIDs(title string, libraries []string) []string {
	target := namematch.Normalize(title)
	var out []string
	seen := make(map[string]struct{})

	for _, library := range libraries {
		steamapps := filepath.Join(library, "steamapps")
		entries, err := os.ReadDir(steamapps)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, "appmanifest_") || !strings.HasSuffix(name, ".acf") {
				continue
			}
			appID := strings.TrimSuffix(strings.TrimPrefix(name, "appmanifest_"), ".acf")
			data, err := os.ReadFile(filepath.Join(steamapps, name))
			if err != nil {
				continue
			}
			appName, ok := vdfValue(string(data), "name")
			if !ok {
				continue
			}
			score := namematch.Similarity(target, namematch.Normalize(appName))
			if score < steamMatchThreshold {
				continue
			}
			if _, dup := seen[appID]; dup {
				continue
			}
			seen[appID] = struct{}{}
			out = append(out, appID)
		}
	}
	return out
}

// vdfValue finds the first "key" "value" pair for key in a textual VDF
// document. The descriptors touched here (app manifests, library
// folders) are flat enough that full VDF nesting never matters.
func vdfValue(text, key string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if k, v, ok := vdfPair(line); ok && k == key {
			return v, true
		}
	}
	return "", false
}

// vdfPair splits one `"key"  "value"` line.
func vdfPair(line string) (string, string, bool) {
	parts := strings.Split(line, `"`)
	if len(parts) < 4 {
		return "", "", false
	}
	return parts[1], parts[3], true
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
