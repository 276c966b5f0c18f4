package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gradescope-scraper/internal/components/telemetry"
	"gradescope-scraper/internal/scrapers/gradescope"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	jsonOutput *bool
	dumpDir    *string
)

var rootCmd = &cobra.Command{
	Use:   "gradescope-cli",
	Short: "gradescope-cli is a CLI for reading and managing Gradescope courses.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsSession(cmd) {
			return nil
		}

		level := slog.LevelWarn
		if *verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		cfg, err := loadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		loc, err := cfg.location()
		if err != nil {
			return fmt.Errorf("config timezone: %w", err)
		}

		otel, err := telemetry.Setup(cmd.Context(), "gradescope-cli", cfg.Otlp)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		var tel telemetry.API = telemetry.SlogAPI{}
		if cfg.Otlp.Metrics.Enabled() {
			tel = telemetry.NewMeterAPI("gradescope-cli", tel)
		}

		client, err := gradescope.NewClient(cfg.options(), tel)
		if err != nil {
			return err
		}
		if *dumpDir != "" {
			err = telemetry.DumpResponses(client.Http, *dumpDir, tel)
			if err != nil {
				return fmt.Errorf("prepare dump directory: %w", err)
			}
		}
		err = client.Login(cmd.Context(), cfg.Email, cfg.Password)
		if err != nil {
			return err
		}

		cmd.SetContext(withSession(cmd.Context(), &session{
			client:   client,
			location: loc,
			otel:     otel,
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		s := getSession(cmd.Context())
		if s == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := s.otel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
	SilenceUsage: true,
}

// needsSession is false for cobra's own help and shell completion commands,
// which must work without credentials.
func needsSession(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "gradescope.json5", "The config file to read credentials from.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every request.")
	jsonOutput = rootCmd.PersistentFlags().Bool("json", false, "Print results as json instead of tables.")
	dumpDir = rootCmd.PersistentFlags().String("dump", "", "Write every request and response to this directory.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
