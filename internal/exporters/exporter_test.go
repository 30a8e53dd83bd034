package exporters

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/loans"
	"github.com/mrlokans/mangashelf/internal/logging"
)

var exportDate = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type fakeShelf struct {
	owned  []entities.Volume
	wanted []entities.Volume
	err    error
}

func (f *fakeShelf) Collection(context.Context, uint) ([]entities.Volume, error) {
	return f.owned, f.err
}

func (f *fakeShelf) Wishlist(context.Context, uint) ([]entities.Volume, error) {
	return f.wanted, nil
}

type fakeLoans struct {
	active []entities.Loan
	filter loans.Filter
}

func (f *fakeLoans) List(_ context.Context, _ uint, filter loans.Filter) ([]entities.Loan, error) {
	f.filter = filter
	return f.active, nil
}

func intPtr(n int) *int { return &n }

func newVolume(id uint, series *entities.Series, edition string, number *int, title string) entities.Volume {
	return entities.Volume{
		ID:     id,
		Number: number,
		Title:  title,
		ISBN:   entities.StringPtr(fmt.Sprintf("978250500%04d", id)),
		Edition: &entities.Edition{
			Name:     edition,
			Language: "fr",
			SeriesID: series.ID,
			Series:   series,
		},
	}
}

func testShelf() (*fakeShelf, *fakeLoans) {
	naruto := &entities.Series{ID: 1, Title: "Naruto", Authors: []string{"Masashi Kishimoto"}}
	berserk := &entities.Series{ID: 2, Title: "Berserk: Deluxe", Authors: []string{"Kentaro Miura"}}

	shelf := &fakeShelf{
		owned: []entities.Volume{
			newVolume(2, naruto, "Standard", intPtr(2), "Naruto, Tome 2"),
			newVolume(1, naruto, "Standard", intPtr(1), "Naruto, Tome 1"),
			newVolume(5, berserk, "Deluxe", intPtr(1), "Berserk | Deluxe 1"),
		},
		wanted: []entities.Volume{
			newVolume(3, naruto, "Standard", intPtr(3), "Naruto, Tome 3"),
		},
	}
	lister := &fakeLoans{active: []entities.Loan{
		{ID: 7, VolumeID: 2, BorrowerName: "Alice", LoanedAt: exportDate.AddDate(0, 0, -3)},
	}}
	return shelf, lister
}

func TestGroupBySeries(t *testing.T) {
	shelf, lister := testShelf()

	groups := GroupBySeries(shelf.owned, shelf.wanted, lister.active)

	require.Len(t, groups, 2)
	assert.Equal(t, "Berserk: Deluxe", groups[0].Title)
	assert.Equal(t, "Naruto", groups[1].Title)

	naruto := groups[1]
	require.Len(t, naruto.Owned, 2)
	assert.Equal(t, uint(1), naruto.Owned[0].ID)
	assert.Equal(t, uint(2), naruto.Owned[1].ID)
	assert.Len(t, naruto.Wanted, 1)
	assert.Equal(t, 1, naruto.OnLoan())
	assert.Equal(t, 0, groups[0].OnLoan())
}

func TestGroupBySeries_UnknownSeriesAndUnnumbered(t *testing.T) {
	series := &entities.Series{ID: 1, Title: "One Piece"}
	owned := []entities.Volume{
		newVolume(1, series, "Standard", nil, "One Piece Special"),
		newVolume(2, series, "Standard", intPtr(1), "One Piece 1"),
		{ID: 3, Title: "Orphan"},
	}

	groups := GroupBySeries(owned, nil, nil)

	require.Len(t, groups, 2)
	assert.Equal(t, "One Piece", groups[0].Title)
	assert.Equal(t, uint(2), groups[0].Owned[0].ID, "numbered volumes come first")
	assert.Equal(t, unknownSeriesTitle, groups[1].Title)
}

func TestGroupBySeries_IgnoresReturnedLoans(t *testing.T) {
	series := &entities.Series{ID: 1, Title: "Naruto"}
	returned := exportDate
	owned := []entities.Volume{newVolume(1, series, "Standard", intPtr(1), "Naruto 1")}

	groups := GroupBySeries(owned, nil, []entities.Loan{{VolumeID: 1, BorrowerName: "Bob", ReturnedAt: &returned}})

	require.Len(t, groups, 1)
	assert.Equal(t, 0, groups[0].OnLoan())
}

func TestGenerateSeriesMarkdown(t *testing.T) {
	shelf, lister := testShelf()
	naruto := GroupBySeries(shelf.owned, shelf.wanted, lister.active)[1]

	markdown := GenerateSeriesMarkdown(naruto, exportDate)

	assert.Contains(t, markdown, "title: \"Naruto\"")
	assert.Contains(t, markdown, "authors: \"Masashi Kishimoto\"")
	assert.Contains(t, markdown, "content_type: manga_series")
	assert.Contains(t, markdown, "exported_at: 2026-03-14")
	assert.Contains(t, markdown, "owned_volumes: 2")
	assert.Contains(t, markdown, "on_loan: 1")
	assert.Contains(t, markdown, "## Standard (fr)")
	assert.Contains(t, markdown, "| 1 | Naruto, Tome 1 |")
	assert.Contains(t, markdown, "On shelf")
	assert.Contains(t, markdown, "Loaned to Alice since 2026-03-11")
	assert.Contains(t, markdown, "## Wishlist\n\n- Naruto, Tome 3\n")
}

func TestGenerateSeriesMarkdown_EscapesTableCells(t *testing.T) {
	shelf, lister := testShelf()
	berserk := GroupBySeries(shelf.owned, shelf.wanted, lister.active)[0]

	markdown := GenerateSeriesMarkdown(berserk, exportDate)

	assert.Contains(t, markdown, `Berserk \| Deluxe 1`)
	assert.NotContains(t, markdown, "## Wishlist")
}

func TestGenerateSeriesMarkdown_QuotesTitle(t *testing.T) {
	s := SeriesShelf{Title: `The "Best" Manga`}

	markdown := GenerateSeriesMarkdown(s, exportDate)

	assert.Contains(t, markdown, `title: "The \"Best\" Manga"`)
	assert.NotContains(t, markdown, "authors:")
}

func TestMarkdownExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	shelf, lister := testShelf()

	exporter := NewMarkdownExporter(dir, logging.Discard())
	exporter.now = func() time.Time { return exportDate }

	result, err := exporter.Export(context.Background(), shelf, lister, 1)
	require.NoError(t, err)

	assert.Equal(t, loans.FilterActive, lister.filter)
	assert.Equal(t, 2, result.SeriesProcessed)
	assert.Equal(t, 3, result.VolumesProcessed)
	assert.Equal(t, 1, result.WishlistProcessed)
	assert.Equal(t, 0, result.SeriesFailed)
	assert.Equal(t, []string{
		filepath.Join(dir, "Berserk Deluxe.md"),
		filepath.Join(dir, "Naruto.md"),
	}, result.Files)

	content, err := os.ReadFile(filepath.Join(dir, "Naruto.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Loaned to Alice")

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Exported 2026-03-14: 3 volume(s) in 2 series, 1 on loan.")
	assert.Contains(t, string(index), "- [[Naruto]]: 2 owned, 1 on loan, 1 wanted")
	assert.Contains(t, string(index), "- [[Berserk Deluxe]]: 1 owned, 0 on loan, 0 wanted")
}

func TestMarkdownExporter_CollidingNames(t *testing.T) {
	dir := t.TempDir()
	a := &entities.Series{ID: 1, Title: "Index"}
	b := &entities.Series{ID: 2, Title: "Naruto?"}
	c := &entities.Series{ID: 3, Title: "Naruto"}
	shelf := &fakeShelf{owned: []entities.Volume{
		newVolume(1, a, "Standard", intPtr(1), "Index 1"),
		newVolume(2, b, "Standard", intPtr(1), "Naruto? 1"),
		newVolume(3, c, "Standard", intPtr(1), "Naruto 1"),
	}}

	result, err := NewMarkdownExporter(dir, logging.Discard()).Export(context.Background(), shelf, &fakeLoans{}, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "Index (2).md"),
		filepath.Join(dir, "Naruto.md"),
		filepath.Join(dir, "Naruto (2).md"),
	}, result.Files)
	assert.FileExists(t, filepath.Join(dir, "index.md"))
}

func TestMarkdownExporter_ShelfError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	shelf := &fakeShelf{err: errors.New("db down")}

	_, err := NewMarkdownExporter(dir, logging.Discard()).Export(context.Background(), shelf, &fakeLoans{}, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read collection")
	assert.NoDirExists(t, dir)
}
