package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"savevault/src/engine"
	"savevault/src/safety"
	"savevault/src/util/progress"
)

func confirmRestore(opts safety.Options, in io.Reader, out io.Writer, label string) (bool, error) {
	question := fmt.Sprintf("Restore %s, overwriting current saves?", label)
	return safety.Confirm(opts, in, out, question)
}

func newRestoreCmd(stdout, stderr io.Writer) *cobra.Command {
	var threadsFlag int

	cmd := &cobra.Command{
		Use:   "restore <backup-id-or-path>",
		Short: "Restore a backup over the current save data",
		Long: "Restore a backup to the original save locations. The argument is a\n" +
			"catalog id from 'savevault list' or a path to a backup directory or\n" +
			"zip archive. The backup format is detected automatically.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := getSafetyOptions(cmd)

			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			backupPath := args[0]
			label := backupPath
			if _, err := os.Stat(backupPath); err != nil {
				record, lookupErr := env.catalog.Get(backupPath)
				if lookupErr != nil {
					return fmt.Errorf("backup not found at %s and no catalog record matches", backupPath)
				}
				backupPath = record.Path
				label = fmt.Sprintf("%s (%s)", record.Game, record.CreatedAt.Format("2006-01-02 15:04"))
			}

			if opts.DryRun {
				fmt.Fprintf(stdout, "Would restore %s from %s\n", label, backupPath)
				return nil
			}
			ok, err := confirmRestore(opts, cmd.InOrStdin(), stderr, label)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(stdout, "Restore cancelled.")
				return nil
			}

			threads := env.threads(threadsFlag, backupPath)
			printer := progress.NewPrinter(stderr, "restore")
			err = env.engine.Restore(backupPath, threads,
				func(p engine.Progress) { printer.Update(p.Done, p.Total) })
			printer.Finish()
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Restored %s\n", label)
			return nil
		},
	}
	cmd.Flags().IntVar(&threadsFlag, "threads", 0, "Copy worker count (0 = automatic)")
	return cmd
}
