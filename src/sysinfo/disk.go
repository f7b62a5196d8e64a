// Package sysinfo supplies the optional hardware hints the backup
// engine's worker sizing uses. Everything here is a capability with an
// "unknown" default so the core stays testable without real hardware.
package sysinfo

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DiskType classifies the device backing a path.
type DiskType int

const (
	DiskUnknown DiskType = iota
	DiskRotational
	DiskSolidState
)

func (d DiskType) String() string {
	switch d {
	case DiskRotational:
		return "hdd"
	case DiskSolidState:
		return "ssd"
	default:
		return "unknown"
	}
}

// ParseDiskType reads a stored classification back; anything
// unrecognized is unknown.
func ParseDiskType(s string) DiskType {
	switch s {
	case "hdd":
		return DiskRotational
	case "ssd":
		return DiskSolidState
	default:
		return DiskUnknown
	}
}

// Prober classifies the disk behind a path.
type Prober interface {
	Probe(path string) DiskType
}

// UnknownProber always answers unknown; the safe default everywhere
// the real probe is unavailable.
type UnknownProber struct{}

func (UnknownProber) Probe(string) DiskType { return DiskUnknown }

// SysfsProber reads the rotational flag Linux exposes per block
// device. Root may be overridden for tests; empty means /sys/block.
type SysfsProber struct {
	Root string
}

// Probe walks the block devices and classifies the first one whose
// name prefixes the device of the filesystem holding path. The mapping
// from path to device is heuristic; failure of any step degrades to
// unknown rather than guessing.
func (p SysfsProber) Probe(path string) DiskType {
	root := p.Root
	if root == "" {
		root = "/sys/block"
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return DiskUnknown
	}
	// Without a reliable path->device mapping in pure Go, classify
	// pessimistically: if any rotational disk is present, assume saves
	// may live on it.
	sawSolid := false
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") ||
			strings.HasPrefix(name, "zram") || strings.HasPrefix(name, "sr") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, name, "queue", "rotational"))
		if err != nil {
			continue
		}
		switch strings.TrimSpace(string(data)) {
		case "1":
			return DiskRotational
		case "0":
			sawSolid = true
		}
	}
	if sawSolid {
		return DiskSolidState
	}
	return DiskUnknown
}

// Default returns the best prober for the current platform.
func Default() Prober {
	if runtime.GOOS == "linux" {
		return SysfsProber{}
	}
	return UnknownProber{}
}

// Workers sizes the copy worker pool from the disk type: rotational
// disks thrash under parallel I/O, solid-state ones do not. The result
// is capped at the CPU count and never below one.
func Workers(d DiskType) int {
	n := 4
	switch d {
	case DiskRotational:
		n = 2
	case DiskSolidState:
		n = 8
	}
	if cpus := runtime.NumCPU(); n > cpus {
		n = cpus
	}
	if n < 1 {
		n = 1
	}
	return n
}
