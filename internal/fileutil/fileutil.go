// Package fileutil handles the workspace directory layout and the file
// plumbing between the drop folder and the dated archive tree.
package fileutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mapwatch/internal/period"
)

// DayDir returns the workspace directory for a category on a given day:
// <root>/<yyyymm>/<yyyymmdd>/<category dir>.
func DayDir(root string, day time.Time, categoryDir string) string {
	return filepath.Join(root, period.FormatMonth(day), period.FormatDay(day), categoryDir)
}

// EnsureDayDirs creates the day's directory for each category.
func EnsureDayDirs(root string, day time.Time, categoryDirs []string) error {
	for _, dir := range categoryDirs {
		path := DayDir(root, day, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create day directory %q: %w", path, err)
		}
	}
	return nil
}

// ListWithKeywords returns the full paths of regular files directly
// under dir whose names contain every keyword, case-insensitively.
// Results are sorted by name. A missing directory yields no results.
func ListWithKeywords(dir string, keywords ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		keep := true
		for _, kw := range keywords {
			if !strings.Contains(name, strings.ToLower(kw)) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListFiles returns the names of regular files directly under dir,
// sorted. A missing directory yields no results.
func ListFiles(dir string) ([]string, error) {
	return ListWithKeywords(dir)
}

// CopyVerified copies sourcePath to targetPath, creating parent
// directories, and verifies the byte count against the source before
// reporting success. The copy lands under a temporary name and is
// renamed into place so readers never observe a partial file.
func CopyVerified(sourcePath, targetPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(targetPath), ".copy-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, source)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("copy data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close destination: %w", err)
	}

	if written != info.Size() {
		os.Remove(tmpPath)
		return fmt.Errorf("size mismatch copying %q: wrote %d of %d bytes", sourcePath, written, info.Size())
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize copy: %w", err)
	}
	return nil
}

// WaitStable polls a file's size until two consecutive observations
// agree, or the attempt budget runs out. Drop folders fed by network
// sync tools surface files before their contents finish arriving.
func WaitStable(path string, interval time.Duration, attempts int) error {
	var last int64 = -1
	for i := 0; i < attempts; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %q: %w", path, err)
		}
		if info.Size() == last {
			return nil
		}
		last = info.Size()
		time.Sleep(interval)
	}
	return fmt.Errorf("file %q still growing after %d checks", path, attempts)
}

// WalkDayTree visits every regular file under the day directories of
// root between from and to inclusive, newest day first. The visit
// callback receives the day and the file's full path.
func WalkDayTree(root string, from, to time.Time, visit func(day time.Time, path string) error) error {
	for day := period.Day(to); !day.Before(period.Day(from)); day = day.AddDate(0, 0, -1) {
		dayRoot := filepath.Join(root, period.FormatMonth(day), period.FormatDay(day))
		err := filepath.WalkDir(dayRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return filepath.SkipAll
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			return visit(day, path)
		})
		if err != nil {
			return fmt.Errorf("walk %q: %w", dayRoot, err)
		}
	}
	return nil
}
