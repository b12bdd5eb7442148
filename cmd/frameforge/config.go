package main

import (
	"fmt"
	"os"

	"github.com/kikiluvv/frameforge/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "./config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		cfg := config.FromContext(cmd.Context())
		if err := cfg.Save(path); err != nil {
			return err
		}

		fmt.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
