package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd(version, buildDate string) *cobra.Command {
	var serverURL string
	root := &cobra.Command{
		Use:           "todoctl",
		Short:         "Command line client for the todo API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Server base URL")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newAuthCmd(&serverURL))
	root.AddCommand(newTodosCmd(&serverURL))
	return root
}

func defaultServerURL() string {
	if v, ok := os.LookupEnv("TODOAPI_SERVER_URL"); ok && v != "" {
		return v
	}
	return "http://localhost:8080"
}
