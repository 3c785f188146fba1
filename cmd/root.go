package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mufawter/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "mufawter",
	Short: "Mufawter - upload, browse and analyze your invoices",
	Long: `Mufawter is a command-line client for the Mufawter invoice API.

Upload invoice photos or PDFs for extraction, review what was read before
saving, browse and filter your invoices, see spending dashboards with smart
insights, export invoices as PDF, Excel or Google Sheets, and ask questions
about your spending in a chat.

The API root is read from API_BASE (environment or .env file).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(verbose)
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Debug().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = logger.Close()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}
