package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penguin-works/kouji-backend/internal/fsys"
	"github.com/penguin-works/kouji-backend/internal/kouji/domain"
	"github.com/penguin-works/kouji-backend/internal/kouji/repository"
	"github.com/penguin-works/kouji-backend/internal/kouji/service"
)

var jst = time.FixedZone("JST", 9*60*60)

func setupServer(t *testing.T) *KoujiServer {
	t.Helper()
	root := t.TempDir()
	old := time.Date(2025, 6, 20, 12, 0, 0, 0, jst)
	dir := filepath.Join(root, "工事", "2025-0618 豊田築炉 名和工場")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.Chtimes(dir, old, old))

	fs, err := fsys.NewService(root)
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2025, 7, 1, 10, 0, 0, 0, jst) }
	svc := service.New(fs,
		repository.NewYAMLStore(filepath.Join(root, "工事", repository.DefaultFileName)),
		service.Config{DefaultPath: "工事", Location: jst, Now: now})

	ks := NewKoujiServer(svc, "test")
	ks.now = now
	return ks
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "want text content, got %T", res.Content[0])
	return text.Text
}

func TestListKouji(t *testing.T) {
	ks := setupServer(t)

	res, err := ks.ListKouji(context.Background(), mcp.CallToolRequest{}, ListKoujiRequest{})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var body struct {
		Count   int              `json:"count"`
		Entries []domain.Project `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "2025-0618", body.Entries[0].ProjectID)
	assert.Equal(t, domain.StatusInProgress, body.Entries[0].Status)
}

func TestListKouji_BadPath(t *testing.T) {
	ks := setupServer(t)

	res, err := ks.ListKouji(context.Background(), mcp.CallToolRequest{}, ListKoujiRequest{Path: "../outside"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestParseKoujiName(t *testing.T) {
	ks := setupServer(t)

	res, err := ks.ParseKoujiName(context.Background(), mcp.CallToolRequest{}, ParseKoujiNameRequest{Name: "2025-1215 ACME North"})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var p domain.Project
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &p))
	assert.Equal(t, "ACME", p.CompanyName)
	assert.Equal(t, "2026-03-15", p.EndDate.String())
	assert.Equal(t, domain.StatusPlanned, p.Status)

	res, err = ks.ParseKoujiName(context.Background(), mcp.CallToolRequest{}, ParseKoujiNameRequest{Name: "2025-0230 X Y"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestUpdateKoujiDates(t *testing.T) {
	ks := setupServer(t)
	ctx := context.Background()

	res, err := ks.UpdateKoujiDates(ctx, mcp.CallToolRequest{}, UpdateKoujiDatesRequest{
		ProjectID: "2025-0618", StartDate: "2025/6/1", EndDate: "2025-06-30",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var p domain.Project
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &p))
	assert.Equal(t, "2025-06-01", p.StartDate.String())
	assert.Equal(t, domain.StatusCompleted, p.Status)

	for _, bad := range []UpdateKoujiDatesRequest{
		{ProjectID: "2025-0618", StartDate: "2025-07-01", EndDate: "2025-06-01"},
		{ProjectID: "2025-0618", StartDate: "tomorrow", EndDate: "2025-06-01"},
		{ProjectID: "1999-0101", StartDate: "2025-06-01", EndDate: "2025-07-01"},
	} {
		res, err := ks.UpdateKoujiDates(ctx, mcp.CallToolRequest{}, bad)
		require.NoError(t, err)
		assert.True(t, res.IsError, "%+v", bad)
	}
}
