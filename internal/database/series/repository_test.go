package series

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
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "series.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Series{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db, NewRepository(db)
}

func TestRepository_CreateOrGet(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateOrGet(ctx, &entities.Series{
		Title:    "Naruto",
		Authors:  []string{"Masashi Kishimoto"},
		CoverURL: "https://covers.example/naruto.jpg",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	t.Run("same title returns the stored row unmodified", func(t *testing.T) {
		again, err := repo.CreateOrGet(ctx, &entities.Series{Title: "Naruto", CoverURL: "https://other.example"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
		assert.Equal(t, "https://covers.example/naruto.jpg", again.CoverURL)
		assert.Equal(t, []string{"Masashi Kishimoto"}, again.Authors)
	})

	t.Run("same api id returns the stored row", func(t *testing.T) {
		withAPI, err := repo.CreateOrGet(ctx, &entities.Series{Title: "Bleach", APIID: entities.StringPtr("OL1W")})
		require.NoError(t, err)

		again, err := repo.CreateOrGet(ctx, &entities.Series{Title: "Bleach (new)", APIID: entities.StringPtr("OL1W")})
		require.NoError(t, err)
		assert.Equal(t, withAPI.ID, again.ID)
	})

	var count int64
	require.NoError(t, db.Model(&entities.Series{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRepository_FindByTitle(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateOrGet(ctx, &entities.Series{Title: "One Piece", Authors: []string{}})
	require.NoError(t, err)

	found, err := repo.FindByTitle(ctx, "One Piece")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "One Piece", found.Title)

	missing, err := repo.FindByTitle(ctx, "one piece")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	_, repo := setupTestDB(t)

	found, err := repo.FindByID(context.Background(), 999)

	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepository_List(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	for _, title := range []string{"Naruto", "Bleach", "One Piece"} {
		_, err := repo.CreateOrGet(ctx, &entities.Series{Title: title, Authors: []string{}})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Bleach", list[0].Title)
	assert.Equal(t, "One Piece", list[2].Title)
}
