package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the fxsentinel CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fxsentinel version %s\n", version)
		fmt.Println("An automated FX trading engine for MetaTrader 5")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
