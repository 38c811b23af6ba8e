// cmd/liferpg is the offline companion to the server: it works on a player's
// namespace directly through the configured store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tahcohcat/liferpg-web/config"
	"github.com/tahcohcat/liferpg-web/internal/blobstore"
	"github.com/tahcohcat/liferpg-web/internal/game"
	"github.com/tahcohcat/liferpg-web/internal/logger"
	"github.com/tahcohcat/liferpg-web/internal/models"
	"github.com/tahcohcat/liferpg-web/internal/services"
)

var Version = "dev"

// app is built lazily so --help works without a store.
type app struct {
	life   *services.LifeService
	closer io.Closer
}

func openApp(ctx context.Context, user string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))

	store, closer, err := blobstore.New(&cfg.Store)
	if err != nil {
		return nil, err
	}
	life := services.NewLifeService(store, cfg.Game, nil, nil)
	if err := life.Open(ctx, user); err != nil {
		closer.Close()
		return nil, err
	}
	return &app{life: life, closer: closer}, nil
}

func dateFlag(cmd *cobra.Command) (models.Date, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		return models.Date{}, nil
	}
	return models.ParseDate(raw)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "liferpg",
		Short:         "LifeRPG - level up your life from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(provisionCmd())
	rootCmd.AddCommand(dueCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func provisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision [user]",
		Short: "Create any missing blobs in a user's namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer a.closer.Close()
			fmt.Fprintln(cmd.OutOrStdout(), good.Render(iconDone+" namespace ready for "+args[0]))
			return nil
		},
	}
}

func dueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due [user]",
		Short: "List the missions active on a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer a.closer.Close()

			resolved, due, err := a.life.DueMissions(cmd.Context(), args[0], day)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDue(resolved, due))
			return nil
		},
	}
	cmd.Flags().StringP("date", "d", "", "Day to check (YYYY-MM-DD, default today)")
	return cmd
}

func completeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete [user] [mission-id]",
		Short: "Mark a mission completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer a.closer.Close()

			res, err := completeMission(cmd.Context(), a.life, args[0], args[1], day)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, good.Render(fmt.Sprintf("%s +%d XP, +%d tokens", iconDone, res.Entry.XPAwarded, res.Entry.TokensAwarded)))
			if res.LevelAfter > res.LevelBefore {
				fmt.Fprintln(out, gold.Render(fmt.Sprintf("%s LEVEL UP! now level %d", iconBolt, res.LevelAfter)))
			}
			return nil
		},
	}
	cmd.Flags().StringP("date", "d", "", "Day of completion (YYYY-MM-DD, default today)")
	return cmd
}

// completeMission records the completion and flushes it. The process exits
// right after, so nothing may be left waiting on auto_save.
func completeMission(ctx context.Context, life *services.LifeService, user, id string, day models.Date) (game.CompleteResult, error) {
	res, err := life.CompleteMission(ctx, user, id, day)
	if err != nil {
		return res, err
	}
	if err := life.Save(ctx, user); err != nil {
		return res, fmt.Errorf("save completion: %w", err)
	}
	return res, nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [user]",
		Short: "Show level, XP, tokens and achievements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer a.closer.Close()

			sum, err := a.life.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			badges, err := a.life.Achievements(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(sum, badges))
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [user]",
		Short: "Write a backup of everything the user owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			path, _ := cmd.Flags().GetString("out")

			a, err := openApp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer a.closer.Close()

			exp, err := a.life.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := encodeExport(exp, format)
			if err != nil {
				return err
			}
			if path == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(path, out, 0o600); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), dim.Render("wrote "+path))
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Output format (json, yaml)")
	cmd.Flags().StringP("out", "o", "", "File to write (default stdout)")
	return cmd
}

func encodeExport(exp models.Export, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return blobstore.EncodeDocument(exp)
	case "yaml", "yml":
		return yaml.Marshal(exp)
	default:
		return nil, fmt.Errorf("unsupported format %q (json, yaml)", format)
	}
}
