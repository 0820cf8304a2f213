package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/foomo/mdclip/locate"
	"github.com/foomo/mdclip/preview"
	"github.com/foomo/mdclip/service"
	"github.com/foomo/mdclip/service/vo"
)

var clipCmd = &cobra.Command{
	Use:   "clip [file]",
	Short: "Convert the article of an HTML page to Markdown",
	Long: `Clip reads a saved HTML page (or stdin when no file or "-" is given),
locates its main article and prints it as Markdown. With --selection the
contents of the first element matching the selector count as the user's
selection and the excerpt document is printed instead.

With --save the document is written with a tags frontmatter. When autoSave is
off you are asked where to put it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := readPage(cmd, args)
		if err != nil {
			return err
		}
		a, err := newApp(terminalPrompter(cmd))
		if err != nil {
			return err
		}
		defer a.close()
		return runClip(cmd, a, page)
	},
}

func init() {
	addPageFlags(clipCmd)
	addClipFlags(clipCmd)
	rootCmd.AddCommand(clipCmd)
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", "", "address of the page, used for the source line and image links")
	cmd.Flags().String("selection", "", "CSS selector of the element treated as the selection")
}

func addClipFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("full-page", false, "print the full page document even with a selection")
	cmd.Flags().StringSlice("tags", nil, "tags for the frontmatter, implies --save")
	cmd.Flags().Bool("save", false, "save the document")
	cmd.Flags().Bool("preview", false, "print HTML rendered from the Markdown instead")
}

// readPage parses the page named by args, or stdin
func readPage(cmd *cobra.Command, args []string) (*locate.Page, error) {
	url, _ := cmd.Flags().GetString("url")
	selector, _ := cmd.Flags().GetString("selection")

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		defer f.Close()
		r = f
	}
	return locate.ParsePage(r, url, selector)
}

func runClip(cmd *cobra.Command, a *app, page *locate.Page) error {
	fullPage, _ := cmd.Flags().GetBool("full-page")
	clip, err := a.service.Clip(cmd.Context(), page, service.ClipOptions{FullPage: fullPage})
	if err != nil {
		return err
	}
	if err := printDocument(cmd, clip.Current); err != nil {
		return err
	}

	save, _ := cmd.Flags().GetBool("save")
	selected, _ := cmd.Flags().GetStringSlice("tags")
	if !save && len(selected) == 0 {
		return nil
	}
	path, err := a.service.SaveSync(cmd.Context(), service.SaveOptions{
		Markdown: clip.Current,
		Title:    clip.Snapshot.Title,
		Tags:     selected,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Saved to", path)
	return nil
}

func printDocument(cmd *cobra.Command, doc vo.MarkdownDocument) error {
	if asHTML, _ := cmd.Flags().GetBool("preview"); asHTML {
		out, err := preview.Render(string(doc))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), doc)
	return err
}
