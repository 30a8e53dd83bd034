package volumes

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

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, *entities.Edition) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "volumes.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Series{}, &entities.Edition{}, &entities.Volume{}, &entities.VolumeISBN{}))
	require.NoError(t, db.Exec(LocalNumberIndex).Error)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	series := &entities.Series{Title: "Naruto", Authors: []string{"Masashi Kishimoto"}}
	require.NoError(t, db.Create(series).Error)
	edition := &entities.Edition{SeriesID: series.ID, Name: "Standard", Language: "fr"}
	require.NoError(t, db.Create(edition).Error)

	return db, NewRepository(db), edition
}

func intPtr(n int) *int { return &n }

func TestRepository_CreateOrGet_ByISBN(t *testing.T) {
	db, repo, edition := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateOrGet(ctx, &entities.Volume{
		EditionID: edition.ID,
		ISBN:      entities.StringPtr("9782505004479"),
		Number:    intPtr(1),
		Title:     "Naruto, Vol. 1",
		Authors:   []string{"Masashi Kishimoto"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	again, err := repo.CreateOrGet(ctx, &entities.Volume{
		EditionID: edition.ID,
		ISBN:      entities.StringPtr("9782505004479"),
		Title:     "Different title",
		Authors:   []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Naruto, Vol. 1", again.Title)

	var count int64
	require.NoError(t, db.Model(&entities.Volume{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_CreateOrGet_LocalVolumesWithoutKeys(t *testing.T) {
	_, repo, edition := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.CreateOrGet(ctx, &entities.Volume{EditionID: edition.ID, Number: intPtr(1), Title: "Naruto Vol. 1", Authors: []string{}})
	require.NoError(t, err)
	second, err := repo.CreateOrGet(ctx, &entities.Volume{EditionID: edition.ID, Number: intPtr(2), Title: "Naruto Vol. 2", Authors: []string{}})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Nil(t, first.ISBN)
	assert.Nil(t, first.APIID)
}

func TestRepository_Finders(t *testing.T) {
	_, repo, edition := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateOrGet(ctx, &entities.Volume{
		EditionID: edition.ID,
		ISBN:      entities.StringPtr("9782505004479"),
		APIID:     entities.StringPtr("OL123M"),
		Number:    intPtr(0),
		Title:     "Naruto, Vol. 0",
		Authors:   []string{},
	})
	require.NoError(t, err)

	t.Run("by isbn", func(t *testing.T) {
		v, err := repo.FindByISBN(ctx, "9782505004479")
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, created.ID, v.ID)
	})

	t.Run("by api id", func(t *testing.T) {
		v, err := repo.FindByAPIID(ctx, "OL123M")
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, created.ID, v.ID)
	})

	t.Run("by edition and number zero", func(t *testing.T) {
		v, err := repo.FindByEditionAndNumber(ctx, edition.ID, 0)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, created.ID, v.ID)
	})

	t.Run("by id joins edition and series", func(t *testing.T) {
		v, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, v)
		require.NotNil(t, v.Edition)
		require.NotNil(t, v.Edition.Series)
		assert.Equal(t, "Naruto", v.Edition.Series.Title)
	})

	t.Run("missing volume is nil", func(t *testing.T) {
		v, err := repo.FindByISBN(ctx, "0000000000")
		require.NoError(t, err)
		assert.Nil(t, v)
	})
}

func TestRepository_CreateOrGet_LocalNumber(t *testing.T) {
	db, repo, edition := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.CreateOrGet(ctx, &entities.Volume{EditionID: edition.ID, Number: intPtr(4), Title: "Naruto 4", Authors: []string{}})
	require.NoError(t, err)

	second, err := repo.CreateOrGet(ctx, &entities.Volume{EditionID: edition.ID, Number: intPtr(4), Title: "Naruto 4", Authors: []string{}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	t.Run("catalogued volumes may share a local number", func(t *testing.T) {
		isbn := "9782505004479"
		v, err := repo.CreateOrGet(ctx, &entities.Volume{EditionID: edition.ID, Number: intPtr(4), ISBN: &isbn, Title: "Naruto 4", Authors: []string{}})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, v.ID)
	})

	var count int64
	require.NoError(t, db.Model(&entities.Volume{}).Where("isbn IS NULL AND api_id IS NULL").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_ISBNAliases(t *testing.T) {
	_, repo, edition := setupTestDB(t)
	ctx := context.Background()

	apiID := "OL1M"
	v, err := repo.CreateOrGet(ctx, &entities.Volume{EditionID: edition.ID, APIID: &apiID, Title: "Naruto 1", Authors: []string{}})
	require.NoError(t, err)

	filled, err := repo.FillISBN(ctx, v.ID, "9782505004479")
	require.NoError(t, err)
	assert.True(t, filled)

	filled, err = repo.FillISBN(ctx, v.ID, "2505004479")
	require.NoError(t, err)
	assert.False(t, filled, "an existing ISBN is never overwritten")

	require.NoError(t, repo.AddISBNAlias(ctx, v.ID, "2505004479"))
	require.NoError(t, repo.AddISBNAlias(ctx, v.ID, "2505004479"))

	for _, isbn := range []string{"9782505004479", "2505004479"} {
		got, err := repo.FindByISBN(ctx, isbn)
		require.NoError(t, err)
		require.NotNil(t, got, isbn)
		assert.Equal(t, v.ID, got.ID)
	}

	missing, err := repo.FindByISBN(ctx, "0000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_ListByEdition(t *testing.T) {
	_, repo, edition := setupTestDB(t)
	ctx := context.Background()

	for _, n := range []int{3, 1, 2} {
		_, err := repo.CreateOrGet(ctx, &entities.Volume{EditionID: edition.ID, Number: intPtr(n), Title: "v", Authors: []string{}})
		require.NoError(t, err)
	}

	list, err := repo.ListByEdition(ctx, edition.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, *list[0].Number)
	assert.Equal(t, 3, *list[2].Number)
}
