package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"savevault/src/safety"
)

func newDeleteCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <backup-id>",
		Short: "Delete a recorded backup and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := getSafetyOptions(cmd)

			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			record, err := env.catalog.Get(args[0])
			if err != nil {
				return err
			}

			if opts.DryRun {
				fmt.Fprintf(stdout, "Would delete backup of %q at %s\n", record.Game, record.Path)
				return nil
			}
			question := fmt.Sprintf("Delete backup of %q at %s?", record.Game, record.Path)
			ok, err := safety.Confirm(opts, cmd.InOrStdin(), stderr, question)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(stdout, "Delete cancelled.")
				return nil
			}

			if err := env.catalog.Delete(record.ID); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Deleted %s\n", record.ID)
			return nil
		},
	}
	return cmd
}
