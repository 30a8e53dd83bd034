package exporters

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/loans"
	"github.com/mrlokans/mangashelf/internal/utils"
)

// MarkdownExporter writes one Markdown file per series plus an index.
type MarkdownExporter struct {
	OutputDir     string
	IndexFileName string
	logger        *slog.Logger
	now           func() time.Time
}

func NewMarkdownExporter(outputDir string, logger *slog.Logger) *MarkdownExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkdownExporter{
		OutputDir:     outputDir,
		IndexFileName: "index.md",
		logger:        logger,
		now:           time.Now,
	}
}

// Export writes the user's shelf. A series that fails to write is counted
// and skipped; reading the shelf or writing the index is fatal.
func (e *MarkdownExporter) Export(ctx context.Context, shelf Shelf, loanLister LoanLister, userID uint) (ExportResult, error) {
	owned, err := shelf.Collection(ctx, userID)
	if err != nil {
		return ExportResult{}, fmt.Errorf("read collection: %w", err)
	}
	wanted, err := shelf.Wishlist(ctx, userID)
	if err != nil {
		return ExportResult{}, fmt.Errorf("read wishlist: %w", err)
	}
	active, err := loanLister.List(ctx, userID, loans.FilterActive)
	if err != nil {
		return ExportResult{}, fmt.Errorf("read loans: %w", err)
	}

	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("create export directory: %w", err)
	}

	exportedAt := e.now()
	result := ExportResult{}
	used := map[string]int{strings.TrimSuffix(e.IndexFileName, ".md"): 1}
	var index strings.Builder

	for _, s := range GroupBySeries(owned, wanted, active) {
		name := uniqueName(utils.SanitizeFilename(s.Title), used)
		path := filepath.Join(e.OutputDir, name+".md")

		if err := os.WriteFile(path, []byte(GenerateSeriesMarkdown(s, exportedAt)), 0o644); err != nil {
			e.logger.Warn("series export failed", "series", s.Title, "path", path, "error", err)
			result.SeriesFailed++
			continue
		}

		result.SeriesProcessed++
		result.VolumesProcessed += len(s.Owned)
		result.WishlistProcessed += len(s.Wanted)
		result.Files = append(result.Files, path)
		fmt.Fprintf(&index, "- [[%s]]: %d owned, %d on loan, %d wanted\n", name, len(s.Owned), s.OnLoan(), len(s.Wanted))
	}

	indexPath := filepath.Join(e.OutputDir, e.IndexFileName)
	if err := os.WriteFile(indexPath, []byte(generateIndex(index.String(), result, len(active), exportedAt)), 0o644); err != nil {
		return result, fmt.Errorf("write index: %w", err)
	}

	e.logger.Info("shelf exported",
		"user_id", userID,
		"dir", e.OutputDir,
		"series", result.SeriesProcessed,
		"volumes", result.VolumesProcessed,
		"failed", result.SeriesFailed,
	)
	return result, nil
}

// GenerateSeriesMarkdown renders one series: front matter, a table per
// edition of owned volumes with their loan state, then the wishlist.
func GenerateSeriesMarkdown(s SeriesShelf, exportedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "---\n")
	fmt.Fprintf(&b, "title: %s\n", quote(s.Title))
	if len(s.Authors) > 0 {
		fmt.Fprintf(&b, "authors: %s\n", quote(strings.Join(s.Authors, ", ")))
	}
	fmt.Fprintf(&b, "content_type: manga_series\n")
	fmt.Fprintf(&b, "exported_at: %s\n", exportedAt.Format(time.DateOnly))
	fmt.Fprintf(&b, "owned_volumes: %d\n", len(s.Owned))
	fmt.Fprintf(&b, "on_loan: %d\n", s.OnLoan())
	fmt.Fprintf(&b, "---\n\n")
	fmt.Fprintf(&b, "# %s\n", s.Title)

	edition := ""
	for i, v := range s.Owned {
		if label := editionLabel(v); i == 0 || label != edition {
			edition = label
			fmt.Fprintf(&b, "\n## %s\n\n", label)
			b.WriteString("| # | Title | ISBN | Status |\n")
			b.WriteString("|---|-------|------|--------|\n")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			volumeNumber(v), cell(v.Title), cell(deref(v.ISBN)), loanStatus(s.Loans, v.ID))
	}

	if len(s.Wanted) > 0 {
		b.WriteString("\n## Wishlist\n\n")
		for _, v := range s.Wanted {
			fmt.Fprintf(&b, "- %s\n", v.Title)
		}
	}

	return b.String()
}

func generateIndex(entries string, result ExportResult, onLoan int, exportedAt time.Time) string {
	var b strings.Builder
	b.WriteString("# Manga shelf\n\n")
	fmt.Fprintf(&b, "Exported %s: %d volume(s) in %d series, %d on loan.\n\n",
		exportedAt.Format(time.DateOnly), result.VolumesProcessed, result.SeriesProcessed, onLoan)
	b.WriteString(entries)
	return b.String()
}

func loanStatus(active map[uint]entities.Loan, volumeID uint) string {
	l, ok := active[volumeID]
	if !ok {
		return "On shelf"
	}
	return fmt.Sprintf("Loaned to %s since %s", cell(l.BorrowerName), l.LoanedAt.Format(time.DateOnly))
}

func volumeNumber(v entities.Volume) string {
	if v.Number == nil {
		return "-"
	}
	return strconv.Itoa(*v.Number)
}

// uniqueName suffixes names that collide after sanitizing, e.g. "Naruto (2)".
func uniqueName(name string, used map[string]int) string {
	key := strings.ToLower(name)
	used[key]++
	if used[key] == 1 {
		return name
	}
	return fmt.Sprintf("%s (%d)", name, used[key])
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
