package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/johanforsgren/mantella/internal/markdown"
	"github.com/johanforsgren/mantella/internal/session"
)

func newCatCmd(svc func() *session.Service) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "cat <collective/page.md>",
		Short: "Print a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := svc().ReadPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				_, err := io.WriteString(out, content)
				return err
			}

			r := markdown.NewRenderer(markdown.DefaultStyles())
			if width, ok := terminalWidth(out); ok {
				r.SetWidth(width)
			}
			fmt.Fprintln(out, r.Render(content))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown source unstyled")
	return cmd
}

func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, false
	}
	return width, true
}

func newPutCmd(svc func() *session.Service) *cobra.Command {
	var showDiff, dryRun bool

	cmd := &cobra.Command{
		Use:   "put <collective/page.md> [file|-]",
		Short: "Upload a page from a file or standard input",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				content []byte
				err     error
			)
			if len(args) == 1 || args[1] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("failed to read page content: %w", err)
			}

			out := cmd.OutOrStdout()
			if showDiff || dryRun {
				diff, err := svc().DiffPage(cmd.Context(), args[0], string(content))
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatDiff(diff))
			}
			if dryRun {
				return nil
			}

			if err := svc().WritePage(cmd.Context(), args[0], string(content)); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s saved %s %s\n",
				SuccessStyle.Render("✓"), args[0], CountStyle.Render(fmt.Sprintf("(%d bytes)", len(content))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "show the changes against the stored page before saving")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the changes without saving")
	return cmd
}

func newAddPageCmd(svc func() *session.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "add-page <collective> <name>",
		Short: "Create an empty page in a collective",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := svc().AddPage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s created %s\n", SuccessStyle.Render("✓"), page.Path)
			return nil
		},
	}
}

func newRmCmd(svc func() *session.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <collective/page.md>...",
		Short: "Delete pages",
		Long:  "Deletes every page given. Pages that are already gone count as deleted.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc().DeletePages(cmd.Context(), args); err != nil {
				return err
			}
			noun := "pages"
			if len(args) == 1 {
				noun = "page"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted %d %s\n", SuccessStyle.Render("✓"), len(args), noun)
			return nil
		},
	}
}
