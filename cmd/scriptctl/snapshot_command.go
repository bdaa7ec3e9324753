package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/script-workspace/internal/adapter/repository"
	"github.com/johnquangdev/script-workspace/internal/domain/entities"
	"github.com/johnquangdev/script-workspace/internal/domain/repositories"
)

const storeTimeout = 30 * time.Second

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect the stored workspace snapshot",
	}
	cmd.AddCommand(newSnapshotShowCommand(ctx))
	cmd.AddCommand(newSnapshotClearCommand(ctx))
	return cmd
}

func newSnapshotShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := withStore(cmd.Context(), ctx, func(c context.Context, repo repositories.SnapshotRepository) (entities.WorkspaceSnapshot, error) {
				raw, err := repo.Load(c)
				if err != nil && !errors.Is(err, repositories.ErrSnapshotNotFound) {
					return entities.WorkspaceSnapshot{}, err
				}
				return entities.DecodeSnapshot(raw), nil
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, snapshot)
			}
			renderSnapshot(cmd, ctx.cfg.Store.Driver, snapshot)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newSnapshotClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete the snapshot without --yes")
			}
			_, err := withStore(cmd.Context(), ctx, func(c context.Context, repo repositories.SnapshotRepository) (struct{}, error) {
				return struct{}{}, repo.Delete(c)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Snapshot deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func withStore[T any](parent context.Context, ctx *commandContext, fn func(context.Context, repositories.SnapshotRepository) (T, error)) (T, error) {
	var zero T
	cfg, err := ctx.config()
	if err != nil {
		return zero, err
	}
	if parent == nil {
		parent = context.Background()
	}
	c, cancel := context.WithTimeout(parent, storeTimeout)
	defer cancel()

	repo, err := repository.OpenSnapshotRepository(c, cfg, nil)
	if err != nil {
		return zero, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer repo.Close()

	return fn(c, repo)
}

func renderSnapshot(cmd *cobra.Command, driver string, s entities.WorkspaceSnapshot) {
	out := cmd.OutOrStdout()

	file := "-"
	if s.LastUploadedFileName != nil {
		file = *s.LastUploadedFileName
	}
	archive := "-"
	if s.BatchZipURL != nil {
		archive = *s.BatchZipURL
	}

	fmt.Fprintf(out, "Store:       %s\n", driver)
	fmt.Fprintf(out, "Last upload: %s\n", file)
	fmt.Fprintf(out, "Transcript:  %s characters\n", humanize.Comma(int64(len([]rune(s.Transcript)))))
	fmt.Fprintf(out, "Archive:     %s\n", archive)

	if len(s.Sections) == 0 {
		fmt.Fprintln(out, "No sections")
		return
	}

	rows := make([][]string, len(s.Sections))
	for i, section := range s.Sections {
		status := "-"
		switch {
		case section.Error != nil:
			status = "error: " + preview(*section.Error, 32)
		case section.AudioURL != "":
			status = "audio"
		}
		rows[i] = []string{strconv.Itoa(i + 1), section.ID, preview(section.Title, 32), status}
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "ID", "Title", "Status"},
		rows,
		[]columnAlignment{alignRight},
	))
}
