package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"gcexport/internal/config"
	"gcexport/internal/export"
	"gcexport/internal/garmin"
	"gcexport/internal/logging"
	"gcexport/internal/services"
)

type rootFlags struct {
	configPath string
	username   string
	password   string
	directory  string
	format     string
	count      string
	unzip      bool
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "gcexport",
		Short: "Export Garmin Connect activities to local files",
		Long: "gcexport downloads activities from a Garmin Connect account into a local\n" +
			"directory: one track file per activity plus a cumulative CSV catalog.\n" +
			"Reruns are incremental; artifacts already on disk are skipped.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Configuration file path")
	rootCmd.Flags().StringVar(&flags.username, "username", "", "Garmin Connect username or email")
	rootCmd.Flags().StringVar(&flags.password, "password", "", "Garmin Connect password")
	rootCmd.Flags().StringVarP(&flags.directory, "directory", "d", "", "Export directory (default: dated directory under the working directory)")
	rootCmd.Flags().StringVarP(&flags.format, "format", "f", "", "Artifact format: gpx, tcx, or original")
	rootCmd.Flags().StringVarP(&flags.count, "count", "c", "", "Number of recent activities to export, or \"all\"")
	rootCmd.Flags().BoolVarP(&flags.unzip, "unzip", "u", false, "Unpack original-format archives after download")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func runRoot(cmd *cobra.Command, flags rootFlags) error {
	cfg, _, _, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	opts, err := exportOptions(cfg, flags, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	interactive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	opts.ShowProgress = interactive && cfg.Logging.Format == "console"

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Color:  interactive,
		Output: os.Stderr,
	})
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	logger = logger.With(logging.String("run_id", runID))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = services.WithRunID(ctx, runID)

	client, err := garmin.New(logging.NewComponentLogger(logger, "garmin"))
	if err != nil {
		return err
	}

	summary, err := export.New(client, opts, logger).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
	return nil
}

// exportOptions merges flag overrides into the loaded configuration and
// validates the result. changed reports whether a flag was set explicitly, so
// empty flag values never clobber configured ones.
func exportOptions(cfg *config.Config, flags rootFlags, changed func(string) bool) (export.Options, error) {
	if changed("username") {
		cfg.Garmin.Username = flags.username
	}
	if changed("password") {
		cfg.Garmin.Password = flags.password
	}
	if changed("directory") {
		cfg.Export.Directory = flags.directory
	}
	if changed("format") {
		cfg.Export.Format = flags.format
	}
	if changed("count") {
		cfg.Export.Count = flags.count
	}
	if changed("unzip") {
		cfg.Export.Unzip = flags.unzip
	}

	if cfg.Garmin.Username == "" || cfg.Garmin.Password == "" {
		return export.Options{}, services.Wrap(services.ErrConfiguration, "cli", "credentials",
			"username and password are required (set them in the config file or pass --username/--password)", nil)
	}

	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return export.Options{}, err
	}
	count, all, err := cfg.Export.CountTarget()
	if err != nil {
		return export.Options{}, err
	}

	return export.Options{
		Username:  cfg.Garmin.Username,
		Password:  cfg.Garmin.Password,
		Directory: cfg.Export.Directory,
		Format:    format,
		Count:     count,
		All:       all,
		Unzip:     cfg.Export.Unzip,
	}, nil
}
