package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/foomo/mdclip/browser"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Clip the page open in a running Chrome",
	Long: `Capture connects to a Chrome started with --remote-debugging-port, reads the
document, address and current selection of the first tab whose address contains
--match, and clips it like the clip command. The tab is left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(terminalPrompter(cmd))
		if err != nil {
			return err
		}
		defer a.close()

		page, err := browser.Capture(cmd.Context(), a.logger, viper.GetString("browser.controlURL"), viper.GetString("browser.match"))
		if err != nil {
			return err
		}
		return runClip(cmd, a, page)
	},
}

func init() {
	captureCmd.Flags().String("control-url", "ws://127.0.0.1:9222", "DevTools websocket URL of the browser")
	captureCmd.Flags().String("match", "", "part of the address of the tab to capture, the first tab when empty")
	addClipFlags(captureCmd)

	_ = viper.BindPFlag("browser.controlURL", captureCmd.Flags().Lookup("control-url"))
	_ = viper.BindPFlag("browser.match", captureCmd.Flags().Lookup("match"))

	rootCmd.AddCommand(captureCmd)
}
