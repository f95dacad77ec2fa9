// tabampctl is the developer tool for the extension: it assembles the
// unpacked extension directory, serves it with live reload, and
// cross-checks the extension's audio-tab view against a running Chrome.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/simukka/tabamp/internal/config"
	"github.com/simukka/tabamp/internal/devserver"
	"github.com/simukka/tabamp/internal/inspect"
	"github.com/simukka/tabamp/internal/pack"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	var cfgPath string
	var cfg config.Tool

	root := &cobra.Command{
		Use:           "tabampctl",
		Short:         "Developer tool for the tabamp extension",
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			return err
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "tabampctl.toml", "path to the TOML config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the unpacked extension directory with live reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := cfg.Logger()
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return devserver.New(cfg, log).Run(ctx)
		},
	}

	var probeTimeout time.Duration
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "List pages and their media state from a running Chrome",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			reports, err := inspect.Tabs(ctx, cfg.CDPURL(), probeTimeout)
			if err != nil {
				return err
			}
			inspect.WriteTable(cmd.OutOrStdout(), reports)
			return nil
		},
	}
	inspectCmd.Flags().DurationVar(&probeTimeout, "probe-timeout", 5*time.Second, "per-tab media probe timeout")

	var version string
	packCmd := &cobra.Command{
		Use:   "pack",
		Short: "Assemble manifest, popup page and timing overrides into the extension directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := cfg.Logger()
			missing, err := pack.Assemble(cfg.ExtensionDir, version, cfg.Timings)
			if err != nil {
				return err
			}
			log.Info().Str("dir", cfg.ExtensionDir).Msg("extension assembled")
			for _, script := range missing {
				log.Warn().Str("script", script).Msg("compiled script missing, run gopherjs build first")
			}
			return nil
		},
	}
	packCmd.Flags().StringVar(&version, "set-version", "0.1.0", "manifest version to write")

	root.AddCommand(serve, inspectCmd, packCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
