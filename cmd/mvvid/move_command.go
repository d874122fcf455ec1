package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mvvid/internal/journal"
	"mvvid/internal/library"
	"mvvid/internal/logging"
	"mvvid/internal/mover"
	"mvvid/internal/services"
)

func newMoveCommand(ctx *commandContext) *cobra.Command {
	var (
		tvFlag       bool
		movieFlag    bool
		sectionFlag  string
		matchFlag    string
		copyFlag     bool
		confirmFlag  bool
		skipScanFlag bool
		dryRunFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "move [source...]",
		Short: "Move media into a Plex library section and request a scan",
		Long: `Move files or directories into a Plex library section and ask the
Plex Media Scanner to pick them up.

Sources are explicit paths, or with --match a glob over the current
directory (symlinks are never selected). Moves on the library filesystem
use an atomic rename; moves crossing filesystems copy first and delete the
source only after the copy verifies.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger()

			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			section, err := resolveSection(catalog, tvFlag, movieFlag, sectionFlag)
			if err != nil {
				return err
			}

			sources, err := gatherSources(args, cmd.Flags().Changed("match"), matchFlag)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return services.Wrap(services.ErrValidation, "move", "select sources", "no files or directories matched", nil)
			}

			eng := mover.New(cfg, logger)
			requests := make([]mover.Request, 0, len(sources))
			for _, src := range sources {
				req, err := eng.Plan(src, section)
				if err != nil {
					return err
				}
				requests = append(requests, req)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Filing %d entr%s under %s:\n", len(requests), plural(len(requests), "y", "ies"), section.DisplayName())
			fmt.Fprintln(out, renderMoveTable(requests))

			if dryRunFlag {
				fmt.Fprintln(out, "Dry run; nothing moved.")
				return nil
			}
			if confirmFlag && !confirmProceed(cmd, len(requests)) {
				return services.Wrap(services.ErrValidation, "move", "confirm", "canceled at user request", nil)
			}

			store := ctx.openJournal()
			if store != nil {
				defer store.Close()
			}

			verb := "Moved"
			if copyFlag {
				verb = "Copied"
			}
			moved := 0
			for _, req := range requests {
				res, err := eng.Move(cmd.Context(), req, copyFlag)
				if err != nil {
					if errors.Is(err, mover.ErrDestinationExists) && len(requests) > 1 {
						fmt.Fprintf(out, "Skipping %s: already in the library\n", filepath.Base(req.Source))
						logger.Warn("destination exists, skipping",
							logging.String("source", req.Source),
							logging.String("destination", req.Destination),
						)
						continue
					}
					return err
				}
				moved++
				fmt.Fprintf(out, "%s %s -> %s\n", verb, filepath.Base(res.Source), res.Destination)
				if store != nil {
					entry := journal.Entry{
						RunID:       ctx.runID,
						Source:      res.Source,
						Destination: res.Destination,
						Section:     res.Section.Name,
						Mode:        string(res.Mode),
						Bytes:       res.Size,
					}
					if err := store.Record(cmd.Context(), entry); err != nil {
						logger.Warn("journal write failed", logging.Error(err))
					}
				}
			}
			fmt.Fprintf(out, "%d of %d entr%s filed under %s.\n", moved, len(requests), plural(len(requests), "y", "ies"), section.DisplayName())

			if moved == 0 || skipScanFlag {
				return nil
			}
			client, err := ctx.scanner()
			if err != nil {
				return err
			}
			if err := client.ScanDirectory(cmd.Context(), section, section.Dir); err != nil {
				return err
			}
			fmt.Fprintf(out, "Requested Plex scan of %s (section %d).\n", section.DisplayName(), section.Key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&tvFlag, "tv", false, "File under the TV section")
	cmd.Flags().BoolVar(&movieFlag, "movie", false, "File under the movies section")
	cmd.Flags().StringVar(&sectionFlag, "section", "", "File under a named section from the config")
	cmd.Flags().StringVar(&matchFlag, "match", "*", "Glob selecting entries of the current directory")
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy instead of move, leaving sources in place")
	cmd.Flags().BoolVar(&confirmFlag, "confirm", false, "Prompt before moving (interactive terminals only)")
	cmd.Flags().BoolVar(&skipScanFlag, "skip-scan", false, "Do not trigger the Plex Media Scanner afterwards")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show what would be moved and exit")
	cmd.MarkFlagsMutuallyExclusive("tv", "movie", "section")

	return cmd
}

func resolveSection(catalog *library.Catalog, tv, movie bool, name string) (library.Section, error) {
	switch {
	case tv:
		return catalog.Lookup("tv")
	case movie:
		return catalog.Lookup("movies")
	case name != "":
		return catalog.Lookup(name)
	default:
		return library.Section{}, services.Wrap(
			services.ErrValidation,
			"move",
			"select section",
			"select a target with --tv, --movie, or --section",
			nil,
		)
	}
}

func gatherSources(args []string, matchSet bool, pattern string) ([]string, error) {
	if len(args) > 0 {
		if matchSet {
			return nil, services.Wrap(services.ErrValidation, "move", "select sources", "--match cannot be combined with explicit paths", nil)
		}
		return args, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "move", "select sources", "determine working directory", err)
	}
	return library.SelectSources(cwd, pattern)
}

func confirmProceed(cmd *cobra.Command, count int) bool {
	stdin, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isatty.IsTerminal(stdin.Fd()) {
		// Non-interactive invocation; the flag is a no-op rather than a
		// hang waiting for input that never comes.
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Move %d entr%s? [y/N] ", count, plural(count, "y", "ies"))
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y")
}

func renderMoveTable(requests []mover.Request) string {
	rows := make([][]string, 0, len(requests))
	for _, req := range requests {
		kind := "file"
		if req.IsDir {
			kind = "dir"
		}
		rows = append(rows, []string{
			kind,
			filepath.Base(req.Source),
			humanize.IBytes(uint64(req.Size)),
			req.Destination,
		})
	}
	return renderTable(
		[]string{"Type", "Name", "Size", "Destination"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
