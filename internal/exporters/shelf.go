package exporters

import (
	"sort"

	"github.com/mrlokans/mangashelf/internal/entities"
)

const unknownSeriesTitle = "Unknown Series"

// SeriesShelf is everything a user has of one series.
type SeriesShelf struct {
	Title   string
	Authors []string
	Owned   []entities.Volume
	Wanted  []entities.Volume
	// Active loans keyed by volume ID.
	Loans map[uint]entities.Loan
}

// OnLoan counts owned volumes that are currently lent out.
func (s SeriesShelf) OnLoan() int {
	n := 0
	for _, v := range s.Owned {
		if _, ok := s.Loans[v.ID]; ok {
			n++
		}
	}
	return n
}

// GroupBySeries splits owned and wanted volumes by series, sorted by title.
// Volumes within a series are ordered by edition, then number.
func GroupBySeries(owned, wanted []entities.Volume, active []entities.Loan) []SeriesShelf {
	byVolume := make(map[uint]entities.Loan, len(active))
	for _, l := range active {
		if l.Active() {
			byVolume[l.VolumeID] = l
		}
	}

	shelves := make(map[string]*SeriesShelf)
	shelfFor := func(v entities.Volume) *SeriesShelf {
		title, authors := seriesOf(v)
		s, ok := shelves[title]
		if !ok {
			s = &SeriesShelf{Title: title, Authors: authors, Loans: make(map[uint]entities.Loan)}
			shelves[title] = s
		}
		return s
	}

	for _, v := range owned {
		s := shelfFor(v)
		s.Owned = append(s.Owned, v)
		if l, ok := byVolume[v.ID]; ok {
			s.Loans[v.ID] = l
		}
	}
	for _, v := range wanted {
		s := shelfFor(v)
		s.Wanted = append(s.Wanted, v)
	}

	result := make([]SeriesShelf, 0, len(shelves))
	for _, s := range shelves {
		sortVolumes(s.Owned)
		sortVolumes(s.Wanted)
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Title < result[j].Title
	})
	return result
}

func seriesOf(v entities.Volume) (string, []string) {
	if v.Edition == nil || v.Edition.Series == nil || v.Edition.Series.Title == "" {
		return unknownSeriesTitle, nil
	}
	return v.Edition.Series.Title, v.Edition.Series.Authors
}

func sortVolumes(volumes []entities.Volume) {
	sort.SliceStable(volumes, func(i, j int) bool {
		a, b := volumes[i], volumes[j]
		if ea, eb := editionLabel(a), editionLabel(b); ea != eb {
			return ea < eb
		}
		switch {
		case a.Number == nil && b.Number == nil:
			return a.Title < b.Title
		case a.Number == nil:
			return false
		case b.Number == nil:
			return true
		}
		return *a.Number < *b.Number
	})
}

func editionLabel(v entities.Volume) string {
	if v.Edition == nil || v.Edition.Name == "" {
		return "Unknown edition"
	}
	if v.Edition.Language == "" {
		return v.Edition.Name
	}
	return v.Edition.Name + " (" + v.Edition.Language + ")"
}
