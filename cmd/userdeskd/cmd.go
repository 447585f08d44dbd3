package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"userdesk/internal/config"
)

const (
	envFileFlag = "env-file"
	portFlag    = "port"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "userdeskd",
		Short: "userdesk API server",
		Long: `userdesk API server.
Configure by environment variables (prefix USERDESK_ optional) or an env file.
Run "userdeskd env" to list the recognised keys.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, os.Stdout)
		},
	}
	rootCmd.PersistentFlags().String(envFileFlag, config.DefaultEnvFile, "env file read before the process environment")
	rootCmd.Flags().IntP(portFlag, "p", 0, "listen port, overrides PORT")

	rootCmd.AddCommand(envCMD())
	return rootCmd
}

func envCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the recognised environment variables",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return config.Usage()
		},
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, err := cmd.Flags().GetString(envFileFlag)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed(portFlag) {
		port, err := cmd.Flags().GetInt(portFlag)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}
