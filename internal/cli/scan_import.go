package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/entrypoint"
)

func newScanImportCommand(ctx *commandContext) *cobra.Command {
	var userID uint
	var file string

	cmd := &cobra.Command{
		Use:   "scan-import",
		Short: "Add every barcode in a file to a user's collection",
		Long: `Reads one ISBN per line (blank lines and lines starting with # are skipped)
and adds each to the collection. A barcode that cannot be resolved is reported
and skipped; the rest of the batch still goes in.`,
		Example: `  mangashelf scan-import --user 1 --file scans.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("required flag --file not provided")
			}
			isbns, err := readISBNFile(file)
			if err != nil {
				return err
			}

			return ctx.withServices(func(svc *entrypoint.Services) error {
				payloadFile, err := svc.Auditor.SaveJSON(map[string]any{"isbns": isbns, "source": file})
				if err != nil {
					svc.Logger.Warn("failed to save scan payload", "error", err)
				}

				result := svc.Catalog.ScanImport(cmd.Context(), userID, isbns)
				svc.Audit.LogScanImport(userID, payloadFile, len(result.Added), len(result.Failed))

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Added %d volume(s), %d failed\n", len(result.Added), len(result.Failed))
				if len(result.Failed) > 0 {
					rows := make([][]string, 0, len(result.Failed))
					for _, f := range result.Failed {
						reason := f.Error
						if f.NotFound {
							reason = "not found"
						}
						rows = append(rows, []string{f.ISBN, reason})
					}
					fmt.Fprintln(out, renderTable([]string{"ISBN", "Reason"}, rows, nil))
				}
				return nil
			})
		},
	}

	cmd.Flags().UintVar(&userID, "user", config.DefaultUserID, "Owner of the imported volumes")
	cmd.Flags().StringVar(&file, "file", "", "File with one ISBN per line (required)")

	return cmd
}

func readISBNFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scan file: %w", err)
	}
	defer f.Close()
	return parseISBNs(f)
}

func parseISBNs(r io.Reader) ([]string, error) {
	var isbns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		isbns = append(isbns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scan file: %w", err)
	}
	return isbns, nil
}
