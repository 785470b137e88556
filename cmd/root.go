package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dPool/cmd/serve"
	"github.com/ValentinKolb/dPool/cmd/text"
	"github.com/ValentinKolb/dPool/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dpool",
		Short: "pooled RPC clients for the review pipeline",
		Long: fmt.Sprintf(`dPool (v%s)

A bounded, keepalive aware RPC client pool written in Go, with a
retrying orchestrator on top. Ships a compose-review server and a
text service client to exercise it.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dPool",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dPool v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(text.TextCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
