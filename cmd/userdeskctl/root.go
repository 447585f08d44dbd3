package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"userdesk/pkg/client"
)

const (
	serverFlag = "server"
	outputFlag = "output"
	tzFlag     = "tz"

	defaultServer = "http://localhost:4000"
	serverEnv     = "USERDESK_SERVER"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "userdeskctl",
		Short:         "userdesk API client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	server := os.Getenv(serverEnv)
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().String(serverFlag, server, "API base url, defaults to $"+serverEnv)
	rootCmd.PersistentFlags().StringP(outputFlag, "o", "table",
		"specify output format, available values: [ table | json ]")
	rootCmd.PersistentFlags().String(tzFlag, "", "time zone for slots, defaults to the local zone")

	rootCmd.AddCommand(
		listCMD(),
		getCMD(),
		createCMD(),
		updateCMD(),
		deleteCMD(),
		browseCMD(),
	)
	return rootCmd
}

func newClient(cmd *cobra.Command) (*client.Client, error) {
	server, err := cmd.Flags().GetString(serverFlag)
	if err != nil {
		return nil, err
	}
	return client.New(server)
}

func location(cmd *cobra.Command) (*time.Location, error) {
	name, err := cmd.Flags().GetString(tzFlag)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", tzFlag, err)
	}
	return loc, nil
}

// jsonOutput reports whether -o json was requested.
func jsonOutput(cmd *cobra.Command) (bool, error) {
	format, err := cmd.Flags().GetString(outputFlag)
	if err != nil {
		return false, err
	}
	switch format {
	case "table", "":
		return false, nil
	case "json":
		return true, nil
	}
	return false, fmt.Errorf("unknown output format %q", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
