package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"savevault/src/catalog"
	"savevault/src/config"
	"savevault/src/engine"
	"savevault/src/locator"
	"savevault/src/manifest"
	"savevault/src/platform"
	"savevault/src/store"
	"savevault/src/sysinfo"
)

const catalogFileName = "catalog.db"

// diskTypeSetting caches the probed disk classification so worker
// sizing stays stable across runs.
const diskTypeSetting = "disk_type"

// env bundles the long-lived application objects a command needs.
// Commands open it on demand so `savevault version` never touches the
// filesystem.
type env struct {
	settings config.Settings
	catalog  *catalog.Catalog
	store    *store.Store
	engine   *engine.Engine
	manifest *manifest.Manifest
}

func openEnv() (*env, error) {
	configDir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return openEnvAt(configDir)
}

func openEnvAt(configDir string) (*env, error) {
	settings, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(filepath.Join(configDir, catalogFileName))
	if err != nil {
		return nil, err
	}

	mstore := manifest.NewStore(filepath.Join(configDir, manifest.CacheFileName), nil)
	if err := mstore.Load(); err != nil {
		cat.Close()
		return nil, err
	}

	st, err := store.New(settings.BackupDir)
	if err != nil {
		cat.Close()
		return nil, err
	}

	loc := locator.New(platform.Default())
	return &env{
		settings: settings,
		catalog:  cat,
		store:    st,
		engine:   engine.New(loc, mstore.Manifest()),
		manifest: mstore.Manifest(),
	}, nil
}

func (e *env) Close() {
	if e.catalog != nil {
		e.catalog.Close()
	}
}

// threads resolves the copy worker count: explicit flag, then the
// config file, then a disk-type heuristic cached in the catalog.
func (e *env) threads(flagValue int, probePath string) int {
	if flagValue > 0 {
		return flagValue
	}
	if e.settings.Threads > 0 {
		return e.settings.Threads
	}
	return sysinfo.Workers(e.diskType(probePath))
}

func (e *env) diskType(probePath string) sysinfo.DiskType {
	if stored, ok, err := e.catalog.Setting(diskTypeSetting); err == nil && ok {
		return sysinfo.ParseDiskType(stored)
	}
	d := sysinfo.Default().Probe(probePath)
	if d != sysinfo.DiskUnknown {
		// Probe failures stay unrecorded so a later run can retry.
		_ = e.catalog.SetSetting(diskTypeSetting, d.String())
	}
	return d
}

// newestMtime stats the discovered files and returns the most recent
// modification time; zero when nothing is statable.
func newestMtime(files []locator.SaveFile) time.Time {
	var newest time.Time
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		if mt := info.ModTime(); mt.After(newest) {
			newest = mt
		}
	}
	return newest
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
