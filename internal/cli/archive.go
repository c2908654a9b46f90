package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-portfolio/internal/archive"
)

var errArchiveDisabled = errors.New("archive is disabled (storage.archive_db is empty)")

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect archived analysis outputs",
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the full archived output of one analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arch, err := openArchive()
		if err != nil {
			return err
		}
		defer arch.Close()
		return executeArchiveShow(cmd.Context(), cmd.OutOrStdout(), arch, args[0])
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list [project]",
	Short: "List archived analyses, optionally for one project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arch, err := openArchive()
		if err != nil {
			return err
		}
		defer arch.Close()
		project := ""
		if len(args) == 1 {
			project = args[0]
		}
		return executeArchiveList(cmd.Context(), cmd.OutOrStdout(), arch, project)
	},
}

func init() {
	archiveCmd.AddCommand(archiveShowCmd, archiveListCmd)
	rootCmd.AddCommand(archiveCmd)
}

func openArchive() (*archive.Archive, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path := cfg.ArchivePath()
	if path == "" {
		return nil, errArchiveDisabled
	}
	return archive.Open(path)
}

func executeArchiveShow(ctx context.Context, w io.Writer, arch *archive.Archive, id string) error {
	out, err := arch.Get(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(w, out)
}

func executeArchiveList(ctx context.Context, w io.Writer, arch *archive.Archive, project string) error {
	var (
		entries []archive.Entry
		err     error
	)
	if project == "" {
		entries, err = arch.List(ctx)
	} else {
		entries, err = arch.ListByProject(ctx, project)
	}
	if err != nil {
		return err
	}
	return writeArchiveTable(w, entries)
}
