package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/penguin-works/kouji-backend/internal/kouji/domain"
)

const koujiPath = "kouji"

func sample(id string, start, end string) domain.StoredDates {
	s, _ := domain.ParseDate(start, time.UTC)
	e, _ := domain.ParseDate(end, time.UTC)
	return domain.StoredDates{
		Path:        koujiPath,
		ProjectID:   id,
		ProjectName: id + " 豊田築炉 名和工場",
		StartDate:   s,
		EndDate:     e,
		UpdatedAt:   time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC),
	}
}

func newYAMLStore(t *testing.T) *YAMLStore {
	t.Helper()
	s := NewYAMLStore(filepath.Join(t.TempDir(), DefaultFileName))
	s.now = func() time.Time { return time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestYAMLStore_MissingFileIsEmpty(t *testing.T) {
	s := newYAMLStore(t)
	ctx := context.Background()

	list, err := s.List(ctx, koujiPath)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Get(ctx, koujiPath, "2025-0618")
	assert.ErrorIs(t, err, domain.ErrDatesNotFound)
}

func TestYAMLStore_PutGetDelete(t *testing.T) {
	s := newYAMLStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, sample("2025-0618", "2025-06-18", "2025-09-18")))
	require.NoError(t, s.PutAll(ctx, []domain.StoredDates{
		sample("2025-1215", "2025-12-15", "2026-03-15"),
		sample("2025-0618", "2025-06-20", "2025-10-01"),
	}))

	got, err := s.Get(ctx, koujiPath, "2025-0618")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-20", got.StartDate.String())
	assert.Equal(t, "2025-10-01", got.EndDate.String())
	assert.True(t, got.UpdatedAt.Equal(time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC)))

	list, err := s.List(ctx, koujiPath)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-1215", list[0].ProjectID)

	require.NoError(t, s.Delete(ctx,
		domain.DatesKey{Path: koujiPath, ProjectID: "2025-1215"},
		domain.DatesKey{Path: koujiPath, ProjectID: "unknown"},
	))
	list, err = s.List(ctx, koujiPath)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-0618", list[0].ProjectID)
}

func TestYAMLStore_PathsAreSeparate(t *testing.T) {
	s := newYAMLStore(t)
	ctx := context.Background()

	other := sample("2025-0618", "2025-06-18", "2025-12-31")
	other.Path = "archive"
	require.NoError(t, s.PutAll(ctx, []domain.StoredDates{
		sample("2025-0618", "2025-06-18", "2025-09-18"),
		other,
	}))

	got, err := s.Get(ctx, koujiPath, "2025-0618")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-18", got.EndDate.String())

	got, err = s.Get(ctx, "archive", "2025-0618")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", got.EndDate.String())

	_, err = s.Get(ctx, "elsewhere", "2025-0618")
	assert.ErrorIs(t, err, domain.ErrDatesNotFound)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Delete(ctx, other.Key()))
	list, err := s.List(ctx, koujiPath)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestYAMLStore_DocumentLayout(t *testing.T) {
	s := newYAMLStore(t)
	require.NoError(t, s.Put(context.Background(), sample("2025-0618", "2025-06-18", "2025-09-18")))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "1.0", doc["version"])
	assert.Equal(t, "kouji-backend", doc["generated_by"])
	assert.Contains(t, string(data), "generated_at: 2025-07-02T09:00:00Z")
	assert.Contains(t, string(data), "path: kouji")
	assert.Contains(t, string(data), "project_id: 2025-0618")
	assert.Contains(t, string(data), `start_date: "2025-06-18"`)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestYAMLStore_ReadsHandWrittenFile(t *testing.T) {
	s := newYAMLStore(t)
	doc := `version: "1.0"
generated_at: 2025-06-01T00:00:00Z
projects:
  - path: kouji
    project_id: 2025-0618
    project_name: 2025-0618 豊田築炉 名和工場
    start_date: 2025-06-18
    end_date: 2025-09-30T00:00:00+09:00
    description: 名和工場の炉修理
    updated_at: 2025-06-01T00:00:00Z
`
	require.NoError(t, os.WriteFile(s.Path(), []byte(doc), 0o644))

	got, err := s.Get(context.Background(), koujiPath, "2025-0618")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-18", got.StartDate.String())
	assert.Equal(t, "2025-09-30", got.EndDate.String())
	assert.Equal(t, "名和工場の炉修理", got.Description)
}

func TestYAMLStore_CorruptFile(t *testing.T) {
	s := newYAMLStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("projects: [\n"), 0o644))

	_, err := s.List(context.Background(), "")
	assert.Error(t, err)
}

func TestYAMLStore_Ping(t *testing.T) {
	s := newYAMLStore(t)
	assert.NoError(t, s.Ping(context.Background()))

	missing := NewYAMLStore(filepath.Join(t.TempDir(), "gone", DefaultFileName))
	assert.Error(t, missing.Ping(context.Background()))
}
