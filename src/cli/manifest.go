package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"savevault/src/config"
	"savevault/src/manifest"
)

func newManifestCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Maintain the community save-location manifest",
	}
	cmd.AddCommand(newManifestRefreshCmd(stdout))
	cmd.AddCommand(newManifestLookupCmd(stdout, stderr))
	return cmd
}

func newManifestRefreshCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-download the community manifest, replacing the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := config.Dir()
			if err != nil {
				return err
			}
			store := manifest.NewStore(filepath.Join(configDir, manifest.CacheFileName), nil)
			if err := store.Refresh(); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Community manifest updated (%d games).\n", len(store.Manifest().Games))
			return nil
		},
	}
}

func newManifestLookupCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <title>",
		Short: "Show the manifest entry matched for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			if env.manifest == nil {
				return fmt.Errorf("no community manifest available; run 'savevault manifest refresh'")
			}
			key, entry, ok := env.manifest.Find(title)
			if !ok {
				if suggestions := env.manifest.Suggest(title, 5); len(suggestions) > 0 {
					fmt.Fprintf(stderr, "Did you mean: %s\n", strings.Join(suggestions, ", "))
				}
				return fmt.Errorf("no manifest entry for %q", title)
			}

			fmt.Fprintf(stdout, "Matched: %s\n", key)
			for _, tmpl := range entry.Templates() {
				fmt.Fprintf(stdout, "  %s\n", tmpl)
			}
			return nil
		},
	}
}
