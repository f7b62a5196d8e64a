package manifest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Community manifest YAML shape, per game:
//
//	Some Game:
//	  files:
//	    <winAppData>/SomeGame/saves:
//	      tags: [save]
//	      when:
//	        - os: windows
//
// A path with no when clause applies everywhere; a when clause keeps the
// path only if some condition names windows (or has no os at all). The
// filter runs once at parse time, so the cached form is already
// platform-specific.
type rawGame struct {
	Files map[string]rawFileMeta `yaml:"files"`
}

type rawFileMeta struct {
	Tags []string       `yaml:"tags"`
	When []rawCondition `yaml:"when"`
}

type rawCondition struct {
	OS    string `yaml:"os"`
	Store string `yaml:"store"`
}

// ParseYAML parses the community manifest text into an indexed Manifest.
func ParseYAML(text []byte) (*Manifest, error) {
	var raw map[string]rawGame
	if err := yaml.Unmarshal(text, &raw); err != nil {
		return nil, fmt.Errorf("parse community manifest: %w", err)
	}

	games := make(map[string]Entry, len(raw))
	for title, g := range raw {
		files := make(map[string][]string)
		for tmpl, meta := range g.Files {
			if !applicable(meta.When) {
				continue
			}
			tags := meta.Tags
			if len(tags) == 0 {
				tags = []string{"save"}
			}
			for _, tag := range tags {
				files[tag] = append(files[tag], tmpl)
			}
		}
		entry := Entry{}
		if len(files) > 0 {
			entry.Files = files
		}
		games[title] = entry
	}
	return FromGames(games), nil
}

func applicable(when []rawCondition) bool {
	if len(when) == 0 {
		return true
	}
	for _, cond := range when {
		switch strings.ToLower(cond.OS) {
		case "":
			// Condition constrains something other than the OS.
			return true
		case "windows", "win":
			return true
		}
	}
	return false
}
