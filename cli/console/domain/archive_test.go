package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_Run(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC) }
	defer func() { now = time.Now }()

	backend := newFakeBackend()
	backend.vehicles = []model.Vehicle{{ID: 1}, {ID: 2}}

	dir := t.TempDir()
	archive := Archive{Source: backend, Dir: dir, Window: types.HistoryWindow24h, Format: types.ExportFormatCSV}

	written, err := archive.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	data, err := os.ReadFile(filepath.Join(dir, "vehicle_1_20240501-030000.csv"))
	require.NoError(t, err)
	assert.Equal(t, "vehicle,csv", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "временные файлы удалены")
}

func TestArchive_InitializeRejectsBadSchedule(t *testing.T) {
	archive := Archive{Source: newFakeBackend(), Dir: t.TempDir()}

	assert.Error(t, archive.Initialize("not a cron"))
	archive.Shutdown()
}
