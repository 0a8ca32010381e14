// File: cmd/run.go
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/jsbind"
	"github.com/xkilldash9x/unitbrowser/internal/browser/jsexec"
	"github.com/xkilldash9x/unitbrowser/internal/browser/style"
)

func newRunCommand(a *app) *cobra.Command {
	var timeout time.Duration
	var dump bool
	cmd := &cobra.Command{
		Use:   "run <file.html> <script.js>",
		Short: "Execute a script against an HTML document",
		Long: `Run loads the document, executes the script with window, document and
getComputedStyle available, waits for a returned promise to settle, and prints the
result as JSON. With --dump the serialized document is printed afterwards.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if timeout <= 0 {
				timeout = a.cfg.Script().Timeout
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return a.runScript(ctx, cmd.OutOrStdout(), args[0], args[1], dump)
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "script timeout (default script.timeout)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the document after the script ran")
	return cmd
}

func (a *app) runScript(ctx context.Context, out io.Writer, page, scriptFile string, dump bool) error {
	data, err := os.ReadFile(page)
	if err != nil {
		return err
	}
	script, err := os.ReadFile(scriptFile)
	if err != nil {
		return err
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	resolver := style.NewResolver(doc, style.Options{
		ViewportWidth:       a.cfg.Browser().ViewportWidth,
		CacheQueries:        a.cfg.Style().CacheQueries,
		LogSkippedSelectors: a.cfg.Style().LogSkippedSelectors,
	}, a.logger)
	bridge := jsbind.NewDOMBridge(a.logger, doc, resolver)

	runtime, err := jsexec.NewRuntime(a.logger, bridge, jsexec.Options{Timeout: a.cfg.Script().Timeout})
	if err != nil {
		return err
	}
	defer runtime.Close()

	a.logger.Debug("Executing script.", zap.String("page", page), zap.String("script", scriptFile))
	result, err := runtime.ExecuteScript(ctx, string(script), nil)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if _, err := fmt.Fprintf(out, "%s\n", encoded); err != nil {
		return err
	}

	if dump {
		runtime.Close()
		if err := html.Render(out, bridge.Document()); err != nil {
			return fmt.Errorf("failed to render document: %w", err)
		}
		_, err = fmt.Fprintln(out)
		return err
	}
	return nil
}
