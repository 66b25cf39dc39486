package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gcexport/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if err := config.WriteSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set the Garmin Connect credentials before exporting.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFlag, _ := cmd.Flags().GetString("config")
			cfg, path, exists, err := config.Load(configFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file does not exist; showing defaults")
			}
			fmt.Fprintf(out, "Export directory: %s\n", cfg.Export.Directory)
			fmt.Fprintf(out, "Format: %s\n", cfg.Export.Format)
			fmt.Fprintf(out, "Count: %s\n", cfg.Export.Count)
			fmt.Fprintf(out, "Unzip originals: %t\n", cfg.Export.Unzip)
			fmt.Fprintf(out, "Logging: %s/%s\n", cfg.Logging.Format, cfg.Logging.Level)
			if cfg.Garmin.Username != "" {
				fmt.Fprintf(out, "Username: %s\n", cfg.Garmin.Username)
			}
			return nil
		},
	}
}
