package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"savevault/src/engine"
	"savevault/src/target"
	"savevault/src/util/progress"
)

func newBackupCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		destination  string
		asZip        bool
		quality      int
		threadsFlag  int
		overridePath string
	)

	cmd := &cobra.Command{
		Use:   "backup <title>",
		Short: "Back up a game's save data",
		Long: "Back up a game's save data to a directory tree or a zip archive.\n" +
			"The destination accepts 'dir:/path' and 'zip:/path.zip' forms; without\n" +
			"--to, a timestamped artifact is created under the configured backup_dir.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			opts := getSafetyOptions(cmd)

			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			var tgt target.Target
			if destination != "" {
				tgt, err = target.Parse(destination)
				if err != nil {
					return err
				}
			} else {
				scheme := "dir"
				if asZip {
					scheme = "zip"
				}
				tgt = target.Target{
					Scheme: scheme,
					Path:   env.store.ArtifactPath(title, time.Now(), asZip),
				}
			}

			q := quality
			if q == 0 {
				q = env.settings.Quality
			}
			if !env.settings.Compression {
				q = 1
			}
			encOpts := engine.DirectoryOptions()
			mode := "directory"
			if tgt.IsArchive() {
				encOpts = engine.ZipOptions(q)
				mode = "zip"
			}

			if opts.DryRun {
				discovery, err := env.engine.Discover(title, overridePath)
				if err != nil {
					return err
				}
				if discovery == nil {
					return fmt.Errorf("no save data found for %q", title)
				}
				fmt.Fprintf(stdout, "Would back up %d files (%s) to %s\n",
					len(discovery.Files), humanBytes(discovery.TotalSize), tgt.String())
				return nil
			}

			threads := env.threads(threadsFlag, tgt.Path)
			printer := progress.NewPrinter(stderr, "copy")
			total, err := env.engine.Backup(title, tgt.Path, threads, encOpts, overridePath,
				func(p engine.Progress) { printer.Update(p.Done, p.Total) })
			printer.Finish()
			if err != nil {
				return err
			}
			if total == 0 {
				os.RemoveAll(tgt.Path)
				return fmt.Errorf("capture produced no data for %q; removed empty backup", title)
			}

			id, err := env.catalog.Add(title, tgt.Path, mode, total, time.Now())
			if err != nil {
				return err
			}
			if err := env.catalog.EnforceRetention(title, env.settings.MaxBackups); err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Backed up %q (%s) to %s [%s]\n", title, humanBytes(total), tgt.Path, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&destination, "to", "", "Destination (dir:/path, zip:/path.zip, or a bare path)")
	cmd.Flags().BoolVar(&asZip, "zip", false, "Write a zip archive when no --to destination is given")
	cmd.Flags().IntVar(&quality, "quality", 0, "Compression quality 1-100 for zip output (default from config)")
	cmd.Flags().IntVar(&threadsFlag, "threads", 0, "Copy worker count (0 = automatic)")
	cmd.Flags().StringVar(&overridePath, "path", "", "Use this save location instead of discovery")
	return cmd
}
