package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// StatsCommandAction prints cache directory statistics, and every file with
// --list.
func StatsCommandAction(ctx context.Context, cmd *cli.Command, meta Meta) error {
	engine, err := openEngine(cmd, meta)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := engine.Stats()
	if err != nil {
		return err
	}

	w := meta.Stdout
	fmt.Fprintf(w, "files:   %d (%d css, %d js)\n", stats.Entries, stats.Styles, stats.Scripts)
	fmt.Fprintf(w, "size:    %s\n", humanize.Bytes(uint64(stats.TotalSize)))
	if stats.Entries > 0 {
		fmt.Fprintf(w, "oldest:  %s old\n", stats.OldestEntry.Round(time.Second))
		fmt.Fprintf(w, "newest:  %s old\n", stats.NewestEntry.Round(time.Second))
	}

	if !cmd.Bool("list") {
		return nil
	}
	entries, err := engine.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, humanize.Bytes(uint64(e.Size)), e.ModifiedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// StatsCommandBuilder constructs the cli.Command for "stats".
func StatsCommandBuilder(meta Meta) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "show cache directory statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "list every cache file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return StatsCommandAction(ctx, cmd, meta)
		},
	}
}

// PruneCommandAction removes cache files older than --older-than.
func PruneCommandAction(ctx context.Context, cmd *cli.Command, meta Meta) error {
	olderThan := cmd.Duration("older-than")
	if olderThan <= 0 {
		return errors.New("--older-than must be a positive duration")
	}

	engine, err := openEngine(cmd, meta)
	if err != nil {
		return err
	}
	defer engine.Close()

	n, err := engine.Prune(olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(meta.Stdout, "pruned %d files\n", n)
	return nil
}

// PruneCommandBuilder constructs the cli.Command for "prune".
func PruneCommandBuilder(meta Meta) *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "remove old cache files",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:     "older-than",
				Usage:    "remove files not modified within this duration",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return PruneCommandAction(ctx, cmd, meta)
		},
	}
}

// ClearCommandBuilder constructs the cli.Command for "clear".
func ClearCommandBuilder(meta Meta) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "remove every style and script from the cache directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			engine, err := openEngine(cmd, meta)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(meta.Stdout, "cache cleared")
			return nil
		},
	}
}
