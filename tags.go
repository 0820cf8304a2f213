package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foomo/mdclip/tags"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage the saved tags offered when clipping",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the saved tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(terminalPrompter(cmd))
		if err != nil {
			return err
		}
		defer a.close()

		all, err := a.service.Tags(cmd.Context())
		if err != nil {
			return err
		}
		for _, tag := range all {
			fmt.Fprintln(cmd.OutOrStdout(), tag)
		}
		return nil
	},
}

var tagsAddCmd = &cobra.Command{
	Use:   "add tag[,tag...]...",
	Short: "Remember tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(terminalPrompter(cmd))
		if err != nil {
			return err
		}
		defer a.close()

		var added []string
		for _, arg := range args {
			added = append(added, tags.Split(arg)...)
		}
		all, err := a.service.AddTags(cmd.Context(), added...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d tags saved\n", len(all))
		return nil
	},
}

var tagsImportCmd = &cobra.Command{
	Use:   "import dir",
	Short: "Remember the tags found in the frontmatter of saved documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(terminalPrompter(cmd))
		if err != nil {
			return err
		}
		defer a.close()

		all, err := a.service.ImportTags(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d tags saved\n", len(all))
		return nil
	},
}

func init() {
	tagsCmd.AddCommand(tagsListCmd, tagsAddCmd, tagsImportCmd)
	rootCmd.AddCommand(tagsCmd)
}
