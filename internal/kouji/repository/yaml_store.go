// Package repository persists kouji date ranges.
package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/penguin-works/kouji-backend/internal/kouji/domain"
)

const (
	// DefaultFileName is the store file kept inside the kouji directory.
	DefaultFileName = ".inside.yaml"

	documentVersion = "1.0"
	generatedBy     = "kouji-backend"
)

type yamlDocument struct {
	Version     string               `yaml:"version"`
	GeneratedAt time.Time            `yaml:"generated_at"`
	GeneratedBy string               `yaml:"generated_by"`
	Projects    []domain.StoredDates `yaml:"projects"`
}

// YAMLStore keeps the stored ranges of every listing path in a single YAML
// file. The file is re-read on each call so edits made by hand are picked up.
type YAMLStore struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path, now: time.Now}
}

func (s *YAMLStore) Path() string { return s.path }

// List returns the ranges stored for one listing path, or for every path
// when path is empty.
func (s *YAMLStore) List(ctx context.Context, path string) ([]domain.StoredDates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return doc.Projects, nil
	}
	out := make([]domain.StoredDates, 0, len(doc.Projects))
	for _, p := range doc.Projects {
		if p.Path == path {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *YAMLStore) Get(ctx context.Context, path, projectID string) (domain.StoredDates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return domain.StoredDates{}, err
	}
	key := domain.DatesKey{Path: path, ProjectID: projectID}
	for _, p := range doc.Projects {
		if p.Key() == key {
			return p, nil
		}
	}
	return domain.StoredDates{}, domain.ErrDatesNotFound
}

func (s *YAMLStore) Put(ctx context.Context, d domain.StoredDates) error {
	return s.PutAll(ctx, []domain.StoredDates{d})
}

// PutAll inserts or replaces the given ranges in one write.
func (s *YAMLStore) PutAll(ctx context.Context, ds []domain.StoredDates) error {
	if len(ds) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	idx := make(map[domain.DatesKey]int, len(doc.Projects))
	for i, p := range doc.Projects {
		idx[p.Key()] = i
	}
	for _, d := range ds {
		if i, ok := idx[d.Key()]; ok {
			doc.Projects[i] = d
			continue
		}
		idx[d.Key()] = len(doc.Projects)
		doc.Projects = append(doc.Projects, d)
	}
	return s.write(doc)
}

func (s *YAMLStore) Delete(ctx context.Context, keys ...domain.DatesKey) error {
	if len(keys) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	drop := make(map[domain.DatesKey]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	kept := doc.Projects[:0]
	for _, p := range doc.Projects {
		if _, ok := drop[p.Key()]; !ok {
			kept = append(kept, p)
		}
	}
	doc.Projects = kept
	return s.write(doc)
}

// Ping checks that the store directory exists.
func (s *YAMLStore) Ping(ctx context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("yaml store: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("yaml store: %s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *YAMLStore) read() (yamlDocument, error) {
	var doc yamlDocument
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return doc, nil
}

// write replaces the file through a temp file in the same directory.
func (s *YAMLStore) write(doc yamlDocument) error {
	sort.SliceStable(doc.Projects, func(i, j int) bool {
		a, b := doc.Projects[i], doc.Projects[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.ProjectID > b.ProjectID
	})
	doc.Version = documentVersion
	doc.GeneratedAt = s.now().UTC().Truncate(time.Second)
	doc.GeneratedBy = generatedBy
	if doc.Projects == nil {
		doc.Projects = []domain.StoredDates{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
