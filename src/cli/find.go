package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newFindCmd(stdout, stderr io.Writer) *cobra.Command {
	var overridePath string

	cmd := &cobra.Command{
		Use:   "find <title>",
		Short: "Locate a game's save data without backing it up",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			discovery, err := env.engine.Discover(title, overridePath)
			if err != nil {
				return err
			}
			if discovery == nil {
				if suggestions := env.engine.Suggest(title, 5); len(suggestions) > 0 {
					fmt.Fprintf(stderr, "Did you mean: %s\n", strings.Join(suggestions, ", "))
				}
				return fmt.Errorf("no save data found for %q", title)
			}

			for _, root := range discovery.Roots {
				fmt.Fprintf(stdout, "%s\t%s\n", root.Label, root.Path)
			}
			fmt.Fprintf(stdout, "%d files, %s\n", len(discovery.Files), humanBytes(discovery.TotalSize))

			due, err := env.catalog.BackupNeeded(title, newestMtime(discovery.Files))
			if err == nil && due {
				fmt.Fprintln(stdout, "Saves changed since the last backup; a new backup is recommended.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&overridePath, "path", "", "Use this save location instead of discovery")
	return cmd
}
