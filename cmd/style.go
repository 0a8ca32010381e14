// File: cmd/style.go
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/parser"
	"github.com/xkilldash9x/unitbrowser/internal/browser/style"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// defaultProperties are reported when --property is not given.
var defaultProperties = []string{"display", "visibility", "color", "background-color", "width"}

// allProperties selects every property the computed style knows about.
const allProperties = "all"

type styleOptions struct {
	selector   string
	format     string
	properties []string
}

// ElementStyle is the computed style of one matched element.
type ElementStyle struct {
	Path       string            `json:"path"`
	Tag        string            `json:"tag"`
	Properties map[string]string `json:"properties"`
	order      []string
}

// FileStyles groups the matched elements of one document.
type FileStyles struct {
	File     string         `json:"file"`
	Elements []ElementStyle `json:"elements"`
}

func newStyleCommand(a *app) *cobra.Command {
	opts := &styleOptions{}
	cmd := &cobra.Command{
		Use:   "style <file.html>...",
		Short: "Print computed styles of the elements matching a selector",
		Long: `Style parses each HTML file, applies its <style> sheets and inline styles, and prints
the computed properties of every element matching --selector. Files are processed in
parallel; a failing file does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStyle(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.selector, "selector", "s", "body *", "selector group choosing the elements to report")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json or xml")
	cmd.Flags().StringSliceVarP(&opts.properties, "property", "p", defaultProperties, `properties to report, or "all"`)
	return cmd
}

func (a *app) runStyle(ctx context.Context, out io.Writer, opts *styleOptions, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch opts.format {
	case "text", "json", "xml":
	default:
		return fmt.Errorf("unknown format %q (want text, json or xml)", opts.format)
	}
	selectors, err := parser.ParseSelectors(opts.selector)
	if err != nil {
		return fmt.Errorf("invalid --selector: %w", err)
	}
	matcher := dom.Compile(selectors)

	results := make([]FileStyles, len(files))
	errs := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Script().Concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.styleFile(file, matcher, opts.properties)
			if err != nil {
				a.logger.Warn("Failed to style file.", zap.String("file", file), zap.Error(err))
				errs[i] = fmt.Errorf("%s: %w", file, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var ok []FileStyles
	for i, res := range results {
		if errs[i] == nil {
			ok = append(ok, res)
		}
	}
	if err := writeStyles(out, opts.format, ok); err != nil {
		return err
	}
	return multierr.Combine(errs...)
}

// styleFile computes the styles of the elements of file selected by matcher.
func (a *app) styleFile(file string, matcher *dom.Matcher, properties []string) (FileStyles, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return FileStyles{}, err
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return FileStyles{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	resolver := style.NewResolver(doc, style.Options{
		ViewportWidth:       a.cfg.Browser().ViewportWidth,
		CacheQueries:        a.cfg.Style().CacheQueries,
		LogSkippedSelectors: a.cfg.Style().LogSkippedSelectors,
	}, a.logger.With(zap.String("file", file)))

	res := FileStyles{File: file, Elements: []ElementStyle{}}
	for _, el := range matcher.QueryAll(doc) {
		cs := resolver.ComputedStyle(el)
		names := properties
		if len(names) == 1 && names[0] == allProperties {
			names = cs.Properties()
		}
		es := ElementStyle{
			Path:       dom.UniqueXPath(el),
			Tag:        el.Data,
			Properties: make(map[string]string, len(names)),
		}
		for _, name := range names {
			key := css.CanonicalName(strings.TrimSpace(name))
			if key == "" {
				continue
			}
			if _, dup := es.Properties[key]; !dup {
				es.order = append(es.order, key)
			}
			es.Properties[key] = cs.GetPropertyValue(key)
		}
		res.Elements = append(res.Elements, es)
	}
	return res, nil
}

func writeStyles(out io.Writer, format string, results []FileStyles) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	case "xml":
		return writeXML(out, results)
	}
	return writeText(out, results)
}

func writeText(out io.Writer, results []FileStyles) error {
	var sb strings.Builder
	for _, res := range results {
		fmt.Fprintf(&sb, "== %s ==\n", res.File)
		for _, el := range res.Elements {
			fmt.Fprintf(&sb, "%s\n", el.Path)
			for _, name := range el.order {
				fmt.Fprintf(&sb, "  %s: %s\n", name, el.Properties[name])
			}
		}
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

func writeXML(out io.Writer, results []FileStyles) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("styles")
	for _, res := range results {
		file := root.CreateElement("file")
		file.CreateAttr("name", res.File)
		for _, el := range res.Elements {
			e := file.CreateElement("element")
			e.CreateAttr("path", el.Path)
			e.CreateAttr("tag", el.Tag)
			for _, name := range el.order {
				p := e.CreateElement("property")
				p.CreateAttr("name", name)
				p.SetText(el.Properties[name])
			}
		}
	}
	doc.Indent(2)
	if _, err := doc.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}
