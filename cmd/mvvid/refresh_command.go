package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mvvid/internal/library"
)

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	var sectionFlags []string
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Scan and refresh Plex library sections",
		Long: `Ask the Plex Media Scanner to scan and refresh library sections.

With no flags every configured section is refreshed in catalog order. This
is the command a systemd timer or cron job should run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			client, err := ctx.scanner()
			if err != nil {
				return err
			}

			var sections []library.Section
			if len(sectionFlags) > 0 {
				for _, name := range sectionFlags {
					section, err := catalog.Lookup(name)
					if err != nil {
						return err
					}
					sections = append(sections, section)
				}
			} else {
				sections = catalog.Sections()
			}

			out := cmd.OutOrStdout()
			for _, section := range sections {
				if err := client.ScanSection(cmd.Context(), section); err != nil {
					return err
				}
				fmt.Fprintf(out, "Refreshed %s (section %d).\n", section.DisplayName(), section.Key)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sectionFlags, "section", nil, "Refresh only the named section (repeatable)")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Refresh every configured section; this is already the default, the flag makes it explicit in scripts")
	cmd.MarkFlagsMutuallyExclusive("section", "all")

	return cmd
}
