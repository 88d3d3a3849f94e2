package denylist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/repos/denylist/parsers"
)

// listExt is the file extension of plain list files picked up by LoadDirectory.
const listExt = ".txt"

// LoadDirectory parses every list file in dir, in file name order, and returns
// the merged entries. Values repeated across files keep their first source.
func LoadDirectory(dir string, logger log.Logger, now time.Time) ([]domain.DenyEntry, error) {
	names, err := listFiles(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []domain.DenyEntry
	for _, name := range names {
		entries, err := loadFile(filepath.Join(dir, name), name, logger, now)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if _, ok := seen[e.Value]; ok {
				continue
			}
			seen[e.Value] = struct{}{}
			out = append(out, e)
		}
		logger.Info(map[string]any{"file": name, "entries": len(entries)}, "denylist_file_loaded")
	}
	return out, nil
}

func listFiles(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read denylist directory %s: %w", dir, err)
	}
	var names []string
	for _, de := range des {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), listExt) {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)
	return names, nil
}

func loadFile(path, source string, logger log.Logger, now time.Time) ([]domain.DenyEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open denylist file %s: %w", path, err)
	}
	defer f.Close()

	entries, err := parsers.ParsePlainList(f, source, logger, now)
	if err != nil {
		return nil, fmt.Errorf("parse denylist file %s: %w", path, err)
	}
	return entries, nil
}
