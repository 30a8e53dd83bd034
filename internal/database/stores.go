package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/database/collection"
	"github.com/mrlokans/mangashelf/internal/database/editions"
	loanrepo "github.com/mrlokans/mangashelf/internal/database/loans"
	"github.com/mrlokans/mangashelf/internal/database/series"
	"github.com/mrlokans/mangashelf/internal/database/volumes"
	"github.com/mrlokans/mangashelf/internal/database/wishlist"
	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/loans"
)

// CatalogStore implements catalog.Store over the domain repositories.
type CatalogStore struct {
	db         *gorm.DB
	series     *series.Repository
	editions   *editions.Repository
	volumes    *volumes.Repository
	collection *collection.Repository
	wishlist   *wishlist.Repository
}

// NewCatalogStore binds every repository to db, which may be a transaction.
func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{
		db:         db,
		series:     series.NewRepository(db),
		editions:   editions.NewRepository(db),
		volumes:    volumes.NewRepository(db),
		collection: collection.NewRepository(db),
		wishlist:   wishlist.NewRepository(db),
	}
}

func (s *CatalogStore) WithinTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewCatalogStore(tx))
	})
}

func (s *CatalogStore) FindSeriesByID(ctx context.Context, id uint) (*entities.Series, error) {
	return s.series.FindByID(ctx, id)
}

func (s *CatalogStore) FindSeriesByTitle(ctx context.Context, title string) (*entities.Series, error) {
	return s.series.FindByTitle(ctx, title)
}

func (s *CatalogStore) CreateOrGetSeries(ctx context.Context, v *entities.Series) (*entities.Series, error) {
	return s.series.CreateOrGet(ctx, v)
}

func (s *CatalogStore) ListSeries(ctx context.Context) ([]entities.Series, error) {
	return s.series.List(ctx)
}

func (s *CatalogStore) FindEditionByID(ctx context.Context, id uint) (*entities.Edition, error) {
	return s.editions.FindByID(ctx, id)
}

func (s *CatalogStore) FindEditionBySeriesAndName(ctx context.Context, seriesID uint, name string) (*entities.Edition, error) {
	return s.editions.FindBySeriesAndName(ctx, seriesID, name)
}

func (s *CatalogStore) CreateOrGetEdition(ctx context.Context, e *entities.Edition) (*entities.Edition, error) {
	return s.editions.CreateOrGet(ctx, e)
}

func (s *CatalogStore) ListEditions(ctx context.Context, seriesID uint) ([]entities.Edition, error) {
	return s.editions.ListBySeries(ctx, seriesID)
}

func (s *CatalogStore) FindVolumeByID(ctx context.Context, id uint) (*entities.Volume, error) {
	return s.volumes.FindByID(ctx, id)
}

func (s *CatalogStore) FindVolumeByISBN(ctx context.Context, isbn string) (*entities.Volume, error) {
	return s.volumes.FindByISBN(ctx, isbn)
}

func (s *CatalogStore) FindVolumeByAPIID(ctx context.Context, apiID string) (*entities.Volume, error) {
	return s.volumes.FindByAPIID(ctx, apiID)
}

func (s *CatalogStore) FindVolumeByEditionAndNumber(ctx context.Context, editionID uint, number int) (*entities.Volume, error) {
	return s.volumes.FindByEditionAndNumber(ctx, editionID, number)
}

func (s *CatalogStore) CreateOrGetVolume(ctx context.Context, v *entities.Volume) (*entities.Volume, error) {
	return s.volumes.CreateOrGet(ctx, v)
}

func (s *CatalogStore) AttachISBN(ctx context.Context, volumeID uint, isbn string) error {
	filled, err := s.volumes.FillISBN(ctx, volumeID, isbn)
	if err != nil || filled {
		return err
	}
	return s.volumes.AddISBNAlias(ctx, volumeID, isbn)
}

func (s *CatalogStore) ListVolumesByEdition(ctx context.Context, editionID uint) ([]entities.Volume, error) {
	return s.volumes.ListByEdition(ctx, editionID)
}

func (s *CatalogStore) AddToCollection(ctx context.Context, userID, volumeID uint) (bool, error) {
	return s.collection.Add(ctx, userID, volumeID)
}

func (s *CatalogStore) RemoveFromCollection(ctx context.Context, userID, volumeID uint) (bool, error) {
	return s.collection.Remove(ctx, userID, volumeID)
}

func (s *CatalogStore) ListCollection(ctx context.Context, userID uint) ([]entities.Volume, error) {
	return s.collection.ListVolumes(ctx, userID)
}

func (s *CatalogStore) AddToWishlist(ctx context.Context, userID, volumeID uint) (bool, error) {
	return s.wishlist.Add(ctx, userID, volumeID)
}

func (s *CatalogStore) RemoveFromWishlist(ctx context.Context, userID, volumeID uint) (bool, error) {
	return s.wishlist.Remove(ctx, userID, volumeID)
}

func (s *CatalogStore) ListWishlist(ctx context.Context, userID uint) ([]entities.Volume, error) {
	return s.wishlist.ListVolumes(ctx, userID)
}

// LoanStore implements loans.Store and translates repository errors into engine errors.
type LoanStore struct {
	db         *gorm.DB
	loans      *loanrepo.Repository
	collection *collection.Repository
}

func NewLoanStore(db *gorm.DB) *LoanStore {
	return &LoanStore{
		db:         db,
		loans:      loanrepo.NewRepository(db),
		collection: collection.NewRepository(db),
	}
}

func (s *LoanStore) WithinTx(ctx context.Context, fn func(tx loans.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewLoanStore(tx))
	})
}

func (s *LoanStore) Owns(ctx context.Context, userID, volumeID uint) (bool, error) {
	return s.collection.Owns(ctx, userID, volumeID)
}

func (s *LoanStore) FindActiveLoan(ctx context.Context, userID, volumeID uint) (*entities.Loan, error) {
	return s.loans.FindActive(ctx, userID, volumeID)
}

func (s *LoanStore) CreateLoan(ctx context.Context, loan *entities.Loan) error {
	err := s.loans.Create(ctx, loan)
	if errors.Is(err, loanrepo.ErrActiveLoanExists) {
		return &loans.AlreadyLoanedError{VolumeID: loan.VolumeID}
	}
	return err
}

func (s *LoanStore) MarkReturned(ctx context.Context, loan *entities.Loan, at time.Time) error {
	err := s.loans.MarkReturned(ctx, loan, at)
	if errors.Is(err, loanrepo.ErrNoActiveLoan) {
		return loans.ErrLoanNotFound
	}
	return err
}

func (s *LoanStore) ListLoans(ctx context.Context, userID uint, filter loans.Filter) ([]entities.Loan, error) {
	return s.loans.ListByUser(ctx, userID, loanrepo.Status(filter))
}

// CountActive reports loans still out across all users.
func (s *LoanStore) CountActive(ctx context.Context) (int64, error) {
	return s.loans.CountActive(ctx)
}
