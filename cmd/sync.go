package cmd

import (
	"fmt"

	"motionfm/storage"

	"github.com/spf13/cobra"
)

var (
	syncPrefix string
	syncJobs   int
	syncDryRun bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download the music library from a MinIO bucket",
	Long: `Mirrors <prefix><album>/<file> objects of the configured MinIO bucket into
MUSIC_DIR. Files already present with the same size are skipped and nothing
is deleted locally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := syncPrefix
		if !cmd.Flags().Changed("prefix") {
			prefix = cfg.MinioPrefix
		}

		client, err := storage.NewMinioClient(
			cfg.MinioEndpoint,
			cfg.MinioAccessKey,
			cfg.MinioSecretKey,
			cfg.MinioBucket,
			cfg.MinioUseSSL,
		)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Syncing %s/%s into %s\n", cfg.MinioBucket, prefix, cfg.MusicDir)

		result, err := client.Sync(cmd.Context(), cfg.MusicDir, storage.SyncOptions{
			Prefix: prefix,
			Jobs:   syncJobs,
			DryRun: syncDryRun,
		})
		if result != nil {
			for _, o := range result.Downloaded {
				fmt.Fprintf(out, "  %s -> %s (%d bytes)\n", o.Key, o.LocalPath, o.Size)
			}
			verb := "downloaded"
			if syncDryRun {
				verb = "would download"
			}
			fmt.Fprintf(out, "%s %d files (%d bytes), %d already up to date\n",
				verb, len(result.Downloaded), result.TotalBytes, result.Skipped)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVarP(&syncPrefix, "prefix", "p", "", "object prefix (default $MINIO_PREFIX)")
	syncCmd.Flags().IntVarP(&syncJobs, "jobs", "j", 4, "concurrent downloads")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "list what would be downloaded")

	syncCmd.Example = `  # mirror the whole bucket
  motionfm sync

  # only the lofi album, two downloads at a time
  motionfm sync -p albums/ -j 2 --dry-run`
}
