package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/pkg/editor"
	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: "svg", "dot", "pdf", "png"
	expand   bool     // draw nested components as clusters
	detailed bool     // append ids to labels
	scale    float64  // png scale factor
	refresh  bool     // bypass the render cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the current level as SVG, DOT, PDF or PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				formatsStr = c.Config.Render.Format
			}
			if !cmd.Flags().Changed("expand") {
				opts.expand = c.Config.Render.Expand
			}
			if !cmd.Flags().Changed("detailed") {
				opts.detailed = c.Config.Render.Detailed
			}
			if !cmd.Flags().Changed("scale") {
				opts.scale = c.Config.Render.Scale
			}
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	f.BoolVar(&opts.expand, "expand", false, "draw nested components as clusters")
	f.BoolVar(&opts.detailed, "detailed", false, "show node ids")
	f.Float64Var(&opts.scale, "scale", 2, "png scale factor")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached renders")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{editor.FormatSVG}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	editor.FormatSVG: true,
	editor.FormatDOT: true,
	editor.FormatPDF: true,
	editor.FormatPNG: true,
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be 'svg', 'dot', 'pdf', or 'png')", f)
		}
	}
	return nil
}

func needsConverter(formats []string) bool {
	for _, f := range formats {
		if f == editor.FormatPDF || f == editor.FormatPNG {
			return true
		}
	}
	return false
}

// basePath derives the base output path from the output flag and the
// document name. Known format extensions are stripped from output.
func basePath(output, document string) string {
	if output == "" {
		return document
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	ctx := cmd.Context()
	if needsConverter(opts.formats) && !render.Available() {
		return errors.New(errors.ErrCodeUnsupported, "pdf and png output need %s on PATH", render.Converter)
	}
	t, err := c.resolveTarget(ctx)
	if err != nil {
		return err
	}
	r, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	base := basePath(opts.output, t.name)
	if len(t.context) > 0 {
		base += "_" + strings.Join(t.context, "_")
	}

	for _, format := range opts.formats {
		spin := startSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", format))
		res, err := r.Render(ctx, t.name, t.context, editor.RenderOptions{
			Format:   format,
			Expand:   opts.expand,
			Detailed: opts.detailed,
			Scale:    opts.scale,
			Refresh:  opts.refresh,
		})
		spin.stop()
		if err != nil {
			return err
		}

		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := os.WriteFile(path, res.Data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}

		c.Logger.Debug("rendered", "format", format, "cached", res.CacheHit, "duration", res.Duration)
		printSuccess("Rendered %s", format)
		printFile(path)
		printRenderStatus(len(res.Data), res.CacheHit)
	}
	return nil
}
