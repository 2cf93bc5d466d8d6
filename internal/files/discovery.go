package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/validation"
)

// FileInfo represents information about a discovered table file
type FileInfo struct {
	Path    string
	Name    string
	Format  string
	Size    int64
	ModTime time.Time
}

// Discovery finds table files relative to a base directory
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindTables lists the CSV and Excel files of dir, sorted by name. Excel
// lock files (~$name.xlsx) are skipped.
func (d *Discovery) FindTables(dir string) ([]FileInfo, error) {
	return d.find(dir, func(name string) (string, bool) {
		if strings.HasPrefix(name, "~$") {
			return "", false
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv", ".txt":
			return validation.FormatCSV, true
		case ".xlsx", ".xlsm":
			return validation.FormatXLSX, true
		}
		return "", false
	})
}

// FindFilesByPattern lists the files of dir whose name matches a glob
// pattern, sorted by name.
func (d *Discovery) FindFilesByPattern(dir, pattern string) ([]FileInfo, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid pattern %q", pattern))
	}
	return d.find(dir, func(name string) (string, bool) {
		ok, _ := filepath.Match(pattern, name)
		return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."), ok
	})
}

func (d *Discovery) find(dir string, match func(name string) (string, bool)) ([]FileInfo, error) {
	// If dir is already absolute, use it directly
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewFileNotFoundError(fullPath)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read directory %s", fullPath), err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, ok := match(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}
	return lo.MaxBy(files, func(a, b FileInfo) bool { return a.ModTime.After(b.ModTime) }), true
}
