// File: cmd/translate.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/xkilldash9x/unitbrowser/internal/browser/parser"
	"github.com/xkilldash9x/unitbrowser/internal/browser/stylesheet"
)

// unsupportedMarker is printed for selectors the translator cannot express.
const unsupportedMarker = "unsupported"

func newTranslateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <selector>...",
		Short: "Print the XPath query for each CSS selector",
		Long: `Translate parses each argument as a selector group and prints one line per
selector: the selector, a tab, and its XPath 1.0 query or "unsupported".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			translator := stylesheet.NewTranslator(a.logger, a.cfg.Style().LogSkippedSelectors)
			out := cmd.OutOrStdout()

			var errs error
			for _, text := range args {
				list, err := parser.ParseSelectors(text)
				if err != nil {
					errs = multierr.Append(errs, fmt.Errorf("selector %q: %w", text, err))
					continue
				}
				for _, sel := range list {
					query, ok := translator.Translate(sel)
					if !ok {
						query = unsupportedMarker
					}
					if _, err := fmt.Fprintf(out, "%s\t%s\n", sel, query); err != nil {
						return err
					}
				}
			}
			return errs
		},
	}
}
