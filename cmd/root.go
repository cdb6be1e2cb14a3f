package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dSS/cmd/decode"
	"github.com/ValentinKolb/dSS/cmd/gen"
	"github.com/ValentinKolb/dSS/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dss",
		Short: "streaming-storage wire protocol tools",
		Long: fmt.Sprintf(`dSS (v%s)

Tooling for the binary wire protocol of the distributed streaming-storage
service: decode frame dumps into readable command listings and generate
sample frame sequences for testing clients and servers.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dSS",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dSS v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(decode.DecodeCmd)
	RootCmd.AddCommand(gen.GenCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("log level (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
