package main

import (
	"encoding/json"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/foomo/mdclip/locate"
)

var locateCmd = &cobra.Command{
	Use:   "locate [file]",
	Short: "Print the located article and metadata of an HTML page",
	Long: `Locate runs only the article detection and sanitizing step and prints the
resulting snapshot as JSON. Use --dump to inspect it as a Go value.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := readPage(cmd, args)
		if err != nil {
			return err
		}
		snapshot := locate.Locate(page, locateOptions())

		if dump, _ := cmd.Flags().GetBool("dump"); dump {
			spew.Fdump(cmd.OutOrStdout(), snapshot)
			return nil
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	},
}

func init() {
	addPageFlags(locateCmd)
	locateCmd.Flags().Bool("dump", false, "dump the snapshot with go-spew")
	rootCmd.AddCommand(locateCmd)
}
