// Package fsys lists directories under a single configured root.
package fsys

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/penguin-works/kouji-backend/internal/kouji/domain"
)

var (
	ErrOutsideRoot = errors.New("path is outside the root")
	ErrNotFound    = errors.New("directory not found")
	ErrNotDir      = errors.New("path is not a directory")
)

// Service reads directories below Root. Paths handed to it are relative to
// Root unless they are absolute paths that already point inside it.
type Service struct {
	root string

	// IncludeHidden lists entries whose name starts with a dot.
	IncludeHidden bool
}

func NewService(root string) (*Service, error) {
	expanded, err := ExpandHome(root)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return &Service{root: filepath.Clean(abs)}, nil
}

func (s *Service) Root() string { return s.root }

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// ResolvePath maps a request path to an absolute path inside the root.
// Symlinks are resolved first, so a link cannot lead out of the root. A path
// that does not exist yet is checked lexically.
func (s *Service) ResolvePath(rel string) (string, error) {
	var full string
	if filepath.IsAbs(rel) {
		full = filepath.Clean(rel)
	} else {
		full = filepath.Join(s.root, filepath.FromSlash(rel))
	}
	resolved, err := filepath.EvalSymlinks(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		resolved = full
	case err != nil:
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, rel, err)
	}
	if !within(s.root, resolved) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return resolved, nil
}

func within(root, full string) bool {
	r, err := filepath.Rel(root, full)
	return err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator))
}

// Relative returns full as a slash separated path relative to the root.
func (s *Service) Relative(full string) string {
	r, err := filepath.Rel(s.root, full)
	if err != nil {
		return full
	}
	return filepath.ToSlash(r)
}

// Listing is the content of one directory.
type Listing struct {
	Path        string            `json:"path"`
	Entries     []domain.RawEntry `json:"folders"`
	FolderCount int               `json:"folder_count"`
	FileCount   int               `json:"file_count"`
}

// List reads the directory at rel. Symlinks are reported with the type and
// size of their target; dangling links are skipped.
func (s *Service) List(ctx context.Context, rel string) (Listing, error) {
	full, err := s.ResolvePath(rel)
	if err != nil {
		return Listing{}, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Listing{}, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return Listing{}, fmt.Errorf("stat %s: %w", rel, err)
	}
	if !info.IsDir() {
		return Listing{}, fmt.Errorf("%w: %s", ErrNotDir, rel)
	}

	dirents, err := os.ReadDir(full)
	if err != nil {
		return Listing{}, fmt.Errorf("read dir %s: %w", rel, err)
	}

	out := Listing{
		Path:    s.Relative(full),
		Entries: make([]domain.RawEntry, 0, len(dirents)),
	}
	for _, de := range dirents {
		if err := ctx.Err(); err != nil {
			return Listing{}, err
		}
		if !s.IncludeHidden && strings.HasPrefix(de.Name(), ".") {
			continue
		}

		p := filepath.Join(full, de.Name())
		fi, err := de.Info()
		if err == nil && fi.Mode()&fs.ModeSymlink != 0 {
			fi, err = os.Stat(p)
		}
		if err != nil {
			log.Printf("[fsys] skip entry=%s error=%v", p, err)
			continue
		}

		entry := domain.RawEntry{
			ID:           inode(fi),
			Name:         de.Name(),
			Path:         s.Relative(p),
			IsDirectory:  fi.IsDir(),
			ModifiedTime: fi.ModTime(),
		}
		if fi.IsDir() {
			out.FolderCount++
		} else {
			entry.Size = uint64(fi.Size())
			out.FileCount++
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}
