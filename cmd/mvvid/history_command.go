package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mvvid/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently filed media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.JournalPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Journal disabled; set paths.journal_path to record moves.")
				return nil
			}
			store, err := journal.Open(cfg.Paths.JournalPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, historyPayload(entries))
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No moves recorded yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum entries to show")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit entries as JSON")

	return cmd
}

type historyEntry struct {
	When        string `json:"when"`
	Section     string `json:"section"`
	Mode        string `json:"mode"`
	Name        string `json:"name"`
	Bytes       int64  `json:"bytes"`
	Destination string `json:"destination"`
	RunID       string `json:"run_id"`
}

func historyPayload(entries []journal.Entry) []historyEntry {
	payload := make([]historyEntry, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, historyEntry{
			When:        entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			Section:     entry.Section,
			Mode:        entry.Mode,
			Name:        filepath.Base(entry.Source),
			Bytes:       entry.Bytes,
			Destination: entry.Destination,
			RunID:       entry.RunID,
		})
	}
	return payload
}

func renderHistoryTable(entries []journal.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.CreatedAt.Local().Format("2006-01-02 15:04"),
			entry.Section,
			entry.Mode,
			filepath.Base(entry.Source),
			humanize.IBytes(uint64(entry.Bytes)),
		})
	}
	return renderTable(
		[]string{"When", "Section", "Mode", "Name", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
