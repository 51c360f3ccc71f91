package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:           "connector-hub",
	Short:         "Connector Hub serves connector descriptors and brokers their auth flows.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, validateCmd, connectorsCmd)
}
