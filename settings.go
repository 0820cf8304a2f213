package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/foomo/mdclip/settings"
)

const autoSaveKey = "autoSave"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change preferences",
}

var settingsGetCmd = &cobra.Command{
	Use:       "get " + autoSaveKey,
	Short:     "Print a preference",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{autoSaveKey},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != autoSaveKey {
			return fmt.Errorf("unknown setting %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), settings.New(settingsPath()).AutoSave())
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:       "set " + autoSaveKey + " true|false",
	Short:     "Change a preference",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{autoSaveKey},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != autoSaveKey {
			return fmt.Errorf("unknown setting %q", args[0])
		}
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", autoSaveKey, err)
		}
		return settings.New(settingsPath()).SetAutoSave(value)
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
