package main

import (
	"context"
	"os"

	"github.com/kikiluvv/frameforge/internal/config"
	"github.com/kikiluvv/frameforge/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "frameforge",
	Short: "frameforge - frame-accurate clip extraction for dataset curation",
	Long:  "Extracts bounded clips from longer source footage under spatial and temporal transforms, with frame-level trimming before export.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(configCmd)
}
