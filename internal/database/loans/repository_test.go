package loans

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/mangashelf/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, *entities.Volume) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "loans.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.Series{}, &entities.Edition{}, &entities.Volume{}, &entities.Loan{},
	))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_active_volume
		ON loans (user_id, volume_id) WHERE returned_at IS NULL`).Error)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	s := &entities.Series{Title: "Naruto", Authors: []string{}}
	require.NoError(t, db.Create(s).Error)
	e := &entities.Edition{SeriesID: s.ID, Name: "Standard", Language: "fr"}
	require.NoError(t, db.Create(e).Error)
	v := &entities.Volume{EditionID: e.ID, Title: "Naruto Vol. 1", Authors: []string{}}
	require.NoError(t, db.Create(v).Error)

	return db, NewRepository(db), v
}

func TestRepository_CreateAndFindActive(t *testing.T) {
	_, repo, vol := setupTestDB(t)
	ctx := context.Background()

	active, err := repo.FindActive(ctx, 1, vol.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	loan := &entities.Loan{UserID: 1, VolumeID: vol.ID, BorrowerName: "Alice", LoanedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, loan))

	active, err = repo.FindActive(ctx, 1, vol.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "Alice", active.BorrowerName)
}

func TestRepository_Create_DuplicateActiveLoan(t *testing.T) {
	_, repo, vol := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Loan{UserID: 1, VolumeID: vol.ID, BorrowerName: "Alice", LoanedAt: time.Now()}))

	err := repo.Create(ctx, &entities.Loan{UserID: 1, VolumeID: vol.ID, BorrowerName: "Bob", LoanedAt: time.Now()})
	assert.ErrorIs(t, err, ErrActiveLoanExists)
}

func TestRepository_MarkReturned(t *testing.T) {
	_, repo, vol := setupTestDB(t)
	ctx := context.Background()

	loanedAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	loan := &entities.Loan{UserID: 1, VolumeID: vol.ID, BorrowerName: "Alice", LoanedAt: loanedAt, Notes: "careful"}
	require.NoError(t, repo.Create(ctx, loan))

	returnedAt := loanedAt.Add(72 * time.Hour)
	require.NoError(t, repo.MarkReturned(ctx, loan, returnedAt))
	require.NotNil(t, loan.ReturnedAt)

	err := repo.MarkReturned(ctx, loan, returnedAt.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNoActiveLoan)

	list, err := repo.ListByUser(ctx, 1, StatusReturned)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].LoanedAt.Equal(loanedAt))
	assert.True(t, list[0].ReturnedAt.Equal(returnedAt))
	assert.Equal(t, "careful", list[0].Notes)
	require.NotNil(t, list[0].Volume)
	assert.Equal(t, "Naruto Vol. 1", list[0].Volume.Title)

	t.Run("volume can be lent again once returned", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &entities.Loan{UserID: 1, VolumeID: vol.ID, BorrowerName: "Bob", LoanedAt: time.Now()}))
	})
}

func TestRepository_ListByUser_Filters(t *testing.T) {
	_, repo, vol := setupTestDB(t)
	ctx := context.Background()

	old := &entities.Loan{UserID: 1, VolumeID: vol.ID, BorrowerName: "Alice", LoanedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.MarkReturned(ctx, old, time.Now().Add(-24*time.Hour)))

	current := &entities.Loan{UserID: 1, VolumeID: vol.ID, BorrowerName: "Bob", LoanedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, current))

	tests := []struct {
		status Status
		want   []string
	}{
		{StatusAll, []string{"Bob", "Alice"}},
		{StatusActive, []string{"Bob"}},
		{StatusReturned, []string{"Alice"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			list, err := repo.ListByUser(ctx, 1, tt.status)
			require.NoError(t, err)

			var got []string
			for _, l := range list {
				got = append(got, l.BorrowerName)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	count, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	other, err := repo.ListByUser(ctx, 2, StatusAll)
	require.NoError(t, err)
	assert.Empty(t, other)
}
