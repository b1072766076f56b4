// Package service builds the kouji project list from folder listings and
// stored date ranges.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penguin-works/kouji-backend/internal/fsys"
	"github.com/penguin-works/kouji-backend/internal/kouji/domain"
	"github.com/penguin-works/kouji-backend/internal/logging"
)

// Store persists date ranges keyed by listing path and project id. List
// with an empty path returns the ranges of every path.
type Store interface {
	List(ctx context.Context, path string) ([]domain.StoredDates, error)
	Get(ctx context.Context, path, projectID string) (domain.StoredDates, error)
	Put(ctx context.Context, d domain.StoredDates) error
	PutAll(ctx context.Context, ds []domain.StoredDates) error
	Delete(ctx context.Context, keys ...domain.DatesKey) error
	Ping(ctx context.Context) error
}

// EntryLister lists one directory.
type EntryLister interface {
	List(ctx context.Context, rel string) (fsys.Listing, error)
}

type Config struct {
	// DefaultPath is listed when a caller passes an empty path.
	DefaultPath string
	Location    *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	entries     EntryLister
	store       Store
	defaultPath string
	loc         *time.Location
	now         func() time.Time
}

func New(entries EntryLister, store Store, cfg Config) *Service {
	s := &Service{
		entries:     entries,
		store:       store,
		defaultPath: cfg.DefaultPath,
		loc:         cfg.Location,
		now:         cfg.Now,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Store() Store { return s.store }

func (s *Service) clock() time.Time { return s.now().In(s.loc) }

func (s *Service) path(rel string) string {
	if rel == "" {
		return s.defaultPath
	}
	return rel
}

type ListOptions struct {
	// IncludePlain also returns directories whose names are not kouji names.
	IncludePlain bool
}

type Result struct {
	Path      string            `json:"path"`
	Projects  []domain.Project  `json:"entries"`
	Plain     []domain.RawEntry `json:"folders,omitempty"`
	TotalSize uint64            `json:"total_size"`
}

// List parses every folder under rel, applies stored ranges and sorts the
// projects newest first.
func (s *Service) List(ctx context.Context, rel string, opts ListOptions) (Result, error) {
	logger := logging.New(ctx)
	rel = s.path(rel)

	listing, err := s.entries.List(ctx, rel)
	if err != nil {
		return Result{}, err
	}

	stored, err := s.storedByID(ctx, listing.Path)
	if err != nil {
		// keep serving name derived dates when the store is unavailable
		logger.Warnf("kouji.list", "path=%s stored dates unavailable: %v", rel, err)
		stored = nil
	}

	now := s.clock()
	res := Result{
		Path:     listing.Path,
		Projects: make([]domain.Project, 0, len(listing.Entries)),
	}
	for _, entry := range listing.Entries {
		p, ok := domain.Parse(entry, now)
		if !ok {
			if opts.IncludePlain && entry.IsDirectory {
				res.Plain = append(res.Plain, entry)
			}
			continue
		}
		if sd, found := stored[p.ProjectID]; found {
			p = s.merge(ctx, p, sd, now)
		}
		res.Projects = append(res.Projects, p)
		res.TotalSize += p.Size
	}
	domain.SortByStartDesc(res.Projects)

	logger.Debugf("kouji.list", "path=%s projects=%d plain=%d", rel, len(res.Projects), len(res.Plain))
	return res, nil
}

// merge applies a stored range. A folder modified after the range was stored
// takes its start date from the name again; the stored end date is kept. A
// stored description always replaces the generated one.
func (s *Service) merge(ctx context.Context, p domain.Project, sd domain.StoredDates, now time.Time) domain.Project {
	start, end := sd.StartDate.In(s.loc), sd.EndDate.In(s.loc)
	if p.ModifiedTime.After(sd.UpdatedAt) {
		start = p.StartDate
	}

	rec := p.Record
	if sd.Description != "" {
		rec.Description = sd.Description
	}
	dated, err := domain.ApplyDateOverride(rec, start, end)
	if err != nil {
		logging.New(ctx).Warnf("kouji.merge", "path=%s project_id=%s ignoring stored dates: %v", sd.Path, p.ProjectID, err)
		return rec.At(now)
	}
	return dated.At(now)
}

func (s *Service) storedByID(ctx context.Context, path string) (map[string]domain.StoredDates, error) {
	list, err := s.store.List(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.StoredDates, len(list))
	for _, d := range list {
		out[d.ProjectID] = d
	}
	return out, nil
}

// Snapshot stores the current date range of every project under rel and
// returns how many were written.
func (s *Service) Snapshot(ctx context.Context, rel string) (int, error) {
	res, err := s.List(ctx, rel, ListOptions{})
	if err != nil {
		return 0, err
	}

	updated := s.now().UTC()
	ds := make([]domain.StoredDates, 0, len(res.Projects))
	for _, p := range res.Projects {
		ds = append(ds, storedFrom(res.Path, p.Record, updated))
	}
	if err := s.store.PutAll(ctx, ds); err != nil {
		return 0, fmt.Errorf("snapshot %s: %w", res.Path, err)
	}

	logging.New(ctx).Infof("kouji.snapshot", "path=%s count=%d", res.Path, len(ds))
	return len(ds), nil
}

// UpdateDates replaces the date range of the project listed under rel.
func (s *Service) UpdateDates(ctx context.Context, rel, projectID string, start, end domain.Date) (domain.Project, error) {
	res, err := s.List(ctx, rel, ListOptions{})
	if err != nil {
		return domain.Project{}, err
	}

	var (
		current domain.Project
		found   bool
	)
	for _, p := range res.Projects {
		if p.ProjectID == projectID {
			current, found = p, true
			break
		}
	}
	if !found {
		return domain.Project{}, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, projectID)
	}

	rec, err := domain.ApplyDateOverride(current.Record, start.In(s.loc), end.In(s.loc))
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.store.Put(ctx, storedFrom(res.Path, rec, s.now().UTC())); err != nil {
		return domain.Project{}, fmt.Errorf("store dates %s: %w", projectID, err)
	}

	logging.New(ctx).Infof("kouji.update_dates", "path=%s project_id=%s start=%s end=%s", res.Path, projectID, rec.StartDate, rec.EndDate)
	return rec.At(s.clock()), nil
}

type CleanupReport struct {
	Before  int               `json:"projects_before"`
	After   int               `json:"projects_after"`
	Removed []domain.DatesKey `json:"removed"`
}

// earliestValid is the first start date accepted from the store.
var earliestValid = domain.NewDate(2000, time.January, 1, time.UTC)

// Cleanup deletes stored ranges of every path that cannot be real: missing
// dates, dates before 2000, or start after end. Far future ranges are kept.
func (s *Service) Cleanup(ctx context.Context) (CleanupReport, error) {
	list, err := s.store.List(ctx, "")
	if err != nil {
		return CleanupReport{}, fmt.Errorf("cleanup: %w", err)
	}

	var removed []domain.DatesKey
	for _, d := range list {
		if err := validStored(d); err != nil {
			logging.New(ctx).Warnf("kouji.cleanup", "path=%s project_id=%s removing: %v", d.Path, d.ProjectID, err)
			removed = append(removed, d.Key())
		}
	}
	if len(removed) > 0 {
		if err := s.store.Delete(ctx, removed...); err != nil {
			return CleanupReport{}, fmt.Errorf("cleanup: %w", err)
		}
	}

	return CleanupReport{
		Before:  len(list),
		After:   len(list) - len(removed),
		Removed: removed,
	}, nil
}

var errInvalidStored = errors.New("invalid stored dates")

func validStored(d domain.StoredDates) error {
	switch {
	case d.StartDate.IsZero() || d.EndDate.IsZero():
		return fmt.Errorf("%w: missing date", errInvalidStored)
	case d.StartDate.Before(earliestValid) || d.EndDate.Before(earliestValid):
		return fmt.Errorf("%w: before %s", errInvalidStored, earliestValid)
	case d.StartDate.After(d.EndDate):
		return fmt.Errorf("%w: start %s after end %s", errInvalidStored, d.StartDate, d.EndDate)
	}
	return nil
}

func storedFrom(path string, rec domain.Record, updated time.Time) domain.StoredDates {
	return domain.StoredDates{
		Path:        path,
		ProjectID:   rec.ProjectID,
		ProjectName: rec.ProjectName,
		Description: rec.Description,
		StartDate:   rec.StartDate,
		EndDate:     rec.EndDate,
		UpdatedAt:   updated,
	}
}
