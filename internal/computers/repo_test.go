package computers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/comcol/comcol-backend/pkg/db"
	"github.com/comcol/comcol-backend/pkg/db/models"
	"github.com/comcol/comcol-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Computer{}, &models.Picture{}))
	return conn
}

func seed(t *testing.T, repo *Repository, name string, maker *string, createdAt time.Time) models.Computer {
	t.Helper()
	row := models.Computer{Name: name, Maker: maker}
	require.NoError(t, repo.Create(context.Background(), &row))
	if !createdAt.IsZero() {
		err := repo.db.Model(&models.Computer{}).Where("id = ?", row.ID).Update("created_at", createdAt).Error
		require.NoError(t, err)
		row.CreatedAt = createdAt
	}
	return row
}

func TestFindByIDPreloadsOrderedPictures(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	computer := seed(t, repo, "Macintosh 128K", nil, time.Time{})
	for _, position := range []int{1, 0, 2} {
		picture := models.Picture{
			ID:         uuid.New(),
			ComputerID: computer.ID,
			FileKey:    uuid.New().String()[:32],
			Extension:  "jpg",
			Position:   position,
		}
		require.NoError(t, conn.Create(&picture).Error)
	}

	found, err := repo.FindByID(ctx, computer.ID)
	require.NoError(t, err)
	require.Len(t, found.Pictures, 3)
	for i, picture := range found.Pictures {
		assert.Equal(t, i, picture.Position)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, db.IsNotFound(err), "expected record-not-found, got %v", err)
}

func TestListNewestFirst(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := seed(t, repo, "IBM 5150", nil, base.Add(-2*time.Hour))
	newer := seed(t, repo, "Amstrad CPC", nil, base)

	rows, err := repo.List(ctx, "", nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestListSearchMatchesNameAndMaker(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	maker := "Sinclair Research"
	seed(t, repo, "ZX81", &maker, time.Time{})
	seed(t, repo, "Oric-1", nil, time.Time{})

	rows, err := repo.List(ctx, "sinclair", nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ZX81", rows[0].Name)

	rows, err = repo.List(ctx, "ORIC", nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Oric-1", rows[0].Name)
}

func TestListCursorSkipsEarlierRows(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := seed(t, repo, "Altair 8800", nil, base.Add(-2*time.Hour))
	middle := seed(t, repo, "Apple I", nil, base.Add(-time.Hour))
	seed(t, repo, "TRS-80", nil, base)

	rows, err := repo.List(ctx, "", &pagination.Cursor{CreatedAt: middle.CreatedAt, ID: middle.ID}, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.ID, rows[0].ID)
}

func TestUpdatePersistsNulls(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	maker := "Tandy"
	row := seed(t, repo, "TRS-80 Model III", &maker, time.Time{})

	row.Maker = nil
	desc := "All-in-one follow-up"
	row.Description = &desc
	require.NoError(t, repo.Update(ctx, &row))

	found, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Maker)
	require.NotNil(t, found.Description)
	assert.Equal(t, desc, *found.Description)
}

func TestDeleteRemovesRow(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	row := seed(t, repo, "Osborne 1", nil, time.Time{})

	require.NoError(t, repo.Delete(ctx, row.ID))
	_, err := repo.FindByID(ctx, row.ID)
	assert.True(t, db.IsNotFound(err), "expected record-not-found after delete, got %v", err)
}
