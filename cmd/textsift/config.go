package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/textsift/textsift/internal/config"
	"github.com/textsift/textsift/internal/home"
	"github.com/textsift/textsift/internal/output"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage textsift configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to the home directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return usageErr("%v", err)
		}
		if err := h.EnsureExists(); err != nil {
			return usageErr("%v", err)
		}
		if h.ConfigExists() && !flagForce {
			return usageErr("config already exists at %s (use --force to overwrite)", h.ConfigPath())
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return usageErr("%v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", h.ConfigPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(cfgManager.Get())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
