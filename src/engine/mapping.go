package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// legacyMappingName marks a directory backup produced by the
// third-party tool this engine stays restore-compatible with.
const legacyMappingName = "mapping.yaml"

// legacyMapping is the third-party format: a drive-letter table plus a
// history of backup passes. Only the most recent pass is restored.
type legacyMapping struct {
	Name    string            `yaml:"name"`
	Drives  map[string]string `yaml:"drives"` // label -> "C:"
	Backups []legacyBackup    `yaml:"backups"`
}

type legacyBackup struct {
	Name     string                `yaml:"name"`
	When     string                `yaml:"when"`
	Files    map[string]legacyFile `yaml:"files"` // original path -> metadata
	Registry legacyRegistry        `yaml:"registry"`
	Children []legacyBackup        `yaml:"children"`
}

type legacyFile struct {
	Size int64  `yaml:"size"`
	Hash string `yaml:"hash,omitempty"`
}

type legacyRegistry struct {
	Hash *string `yaml:"hash"`
}

var driveRE = regexp.MustCompile(`^([A-Za-z]):[\\/](.*)$`)

// restoreFromLegacyMapping inverts the mapping's drive table, rebuilds
// each original absolute path, and copies the stored file back. Like
// the native formats, one missing or unreadable file never aborts the
// rest.
func restoreFromLegacyMapping(backupRoot, mappingPath string) error {
	data, err := os.ReadFile(mappingPath)
	if err != nil {
		return fmt.Errorf("read legacy mapping: %w", err)
	}
	var mapping legacyMapping
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return fmt.Errorf("parse legacy mapping: %w", err)
	}
	if len(mapping.Backups) == 0 {
		return errors.New("no backup entries in legacy mapping")
	}
	backup := mapping.Backups[len(mapping.Backups)-1]

	// label -> "C:" inverted to "C:" -> label.
	inverse := make(map[string]string, len(mapping.Drives))
	for label, prefix := range mapping.Drives {
		inverse[prefix] = label
	}

	for original := range backup.Files {
		label, rel := splitDriveForRestore(original, inverse)
		source := filepath.Join(backupRoot, fromBackupRel("files/"+label+"/"+rel))
		target := filepath.FromSlash(strings.ReplaceAll(original, `\`, "/"))
		if err := restoreOne(source, target); err != nil {
			log.Error().Err(err).Str("path", original).Msg("legacy restore skipped file")
		}
	}
	return nil
}

// splitDriveForRestore maps an original absolute path onto the label
// the legacy tool stored it under plus the drive-relative remainder.
// Drive letters missing from the table get a synthesized drive-<LETTER>
// label; pathless-drive originals land under drive-0.
func splitDriveForRestore(original string, inverseDrives map[string]string) (string, string) {
	if m := driveRE.FindStringSubmatch(original); m != nil {
		letter := strings.ToUpper(m[1])
		rel := strings.ReplaceAll(m[2], `\`, "/")
		if label, ok := inverseDrives[letter+":"]; ok {
			return label, rel
		}
		return "drive-" + letter, rel
	}
	return "drive-0", strings.ReplaceAll(original, `\`, "/")
}
