package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		game     string
		fromDisk bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			if fromDisk {
				return listFromDisk(stdout, env, game)
			}

			records, err := env.catalog.List(game)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(stdout, "No backups recorded.")
				return nil
			}

			w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tGAME\tMODE\tSIZE\tCREATED\tPATH")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Game, r.Mode, humanBytes(r.Size),
					r.CreatedAt.Format("2006-01-02 15:04"), r.Path)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&game, "game", "", "Only list backups for this game")
	cmd.Flags().BoolVar(&fromDisk, "disk", false, "Scan the backup directory instead of the catalog")
	return cmd
}

// listFromDisk walks the artifact store directly, catching backups the
// catalog never saw (copied in by hand, or made by another machine).
func listFromDisk(stdout io.Writer, env *env, game string) error {
	entries, err := env.store.List(game)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "No backup artifacts found.")
		return nil
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GAME\tTIMESTAMP\tFORMAT\tPATH")
	for _, e := range entries {
		format := "directory"
		if e.Archive {
			format = "zip"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Game, e.Timestamp, format, e.Path)
	}
	return w.Flush()
}
