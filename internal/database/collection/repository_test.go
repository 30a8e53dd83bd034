package collection

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/mangashelf/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "collection.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.Series{}, &entities.Edition{}, &entities.Volume{}, &entities.CollectionEntry{},
	))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db, NewRepository(db)
}

func createTestVolume(t *testing.T, db *gorm.DB, seriesTitle string, number int) *entities.Volume {
	s := &entities.Series{Title: seriesTitle, Authors: []string{}}
	require.NoError(t, db.Where("title = ?", seriesTitle).FirstOrCreate(s).Error)
	e := &entities.Edition{SeriesID: s.ID, Name: "Standard", Language: "fr"}
	require.NoError(t, db.Where("series_id = ? AND name = ?", s.ID, "Standard").FirstOrCreate(e).Error)
	v := &entities.Volume{EditionID: e.ID, Number: &number, Title: seriesTitle, Authors: []string{}}
	require.NoError(t, db.Create(v).Error)
	return v
}

func TestRepository_AddIsIdempotent(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()
	vol := createTestVolume(t, db, "Naruto", 1)

	added, err := repo.Add(ctx, 1, vol.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, 1, vol.ID)
	require.NoError(t, err)
	assert.False(t, added)

	owns, err := repo.Owns(ctx, 1, vol.ID)
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = repo.Owns(ctx, 2, vol.ID)
	require.NoError(t, err)
	assert.False(t, owns)
}

func TestRepository_Remove(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()
	vol := createTestVolume(t, db, "Naruto", 1)

	removed, err := repo.Remove(ctx, 1, vol.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.Add(ctx, 1, vol.ID)
	require.NoError(t, err)

	removed, err = repo.Remove(ctx, 1, vol.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	owns, err := repo.Owns(ctx, 1, vol.ID)
	require.NoError(t, err)
	assert.False(t, owns)
}

func TestRepository_ListVolumes_Ordering(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	naruto2 := createTestVolume(t, db, "Naruto", 2)
	bleach1 := createTestVolume(t, db, "Bleach", 1)
	naruto1 := createTestVolume(t, db, "Naruto", 1)
	other := createTestVolume(t, db, "One Piece", 1)

	for _, v := range []*entities.Volume{naruto2, bleach1, naruto1} {
		_, err := repo.Add(ctx, 1, v.ID)
		require.NoError(t, err)
	}
	_, err := repo.Add(ctx, 2, other.ID)
	require.NoError(t, err)

	list, err := repo.ListVolumes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, bleach1.ID, list[0].ID)
	assert.Equal(t, naruto1.ID, list[1].ID)
	assert.Equal(t, naruto2.ID, list[2].ID)
	require.NotNil(t, list[0].Edition)
	require.NotNil(t, list[0].Edition.Series)
	assert.Equal(t, "Bleach", list[0].Edition.Series.Title)
}
