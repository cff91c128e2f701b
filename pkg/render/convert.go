package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// Converter is the external program used for SVG conversion. It is a
// variable so tests and packagers can point it elsewhere.
var Converter = "rsvg-convert"

const installHint = "install librsvg (brew install librsvg, apt install librsvg2-bin)"

// ToPDF converts an SVG diagram to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf", nil)
}

// ToPNG converts an SVG diagram to PNG. A scale of 2 doubles the pixel
// size; non-positive scales render at 1x.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(ctx, svg, "png", []string{"--zoom", strconv.FormatFloat(scale, 'f', 2, 64)})
}

// Available reports whether the converter can be found on PATH.
func Available() bool {
	_, err := exec.LookPath(Converter)
	return err == nil
}

func convert(ctx context.Context, svg []byte, format string, extra []string) ([]byte, error) {
	if len(svg) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty svg for %s conversion", format)
	}
	bin, err := exec.LookPath(Converter)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s output needs %s: %s", format, Converter, installHint)
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s conversion interrupted", format)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", Converter, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
