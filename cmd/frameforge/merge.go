package main

import (
	"fmt"

	"github.com/kikiluvv/frameforge/internal/config"
	"github.com/kikiluvv/frameforge/internal/session"
	"github.com/spf13/cobra"
)

var mergeReencode bool

var mergeCmd = &cobra.Command{
	Use:   "merge <output> <clip>...",
	Short: "Concatenate exported clips into one file",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		sess, err := session.New(cfg)
		if err != nil {
			return err
		}
		defer sess.Close()

		output, inputs := args[0], args[1:]
		if err := sess.Merge(cmd.Context(), inputs, output, mergeReencode); err != nil {
			return err
		}

		fmt.Println(output)
		return nil
	},
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeReencode, "reencode", false, "re-encode instead of stream copy")
}
