package render

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	apperr "github.com/matzehuels/poagraph/pkg/errors"
)

// converter is the librsvg command line tool.
const converter = "rsvg-convert"

// ErrConverterMissing reports that rsvg-convert is not on PATH. It carries
// the Unsupported code, so the server answers 501.
var ErrConverterMissing = apperr.New(apperr.ErrCodeUnsupported,
	"%s not found; install librsvg (brew install librsvg, apt install librsvg2-bin)", converter)

// ToPDF converts an SVG document to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf")
}

// ToPNG rasterizes an SVG document. scale multiplies the SVG's pixel size;
// values <= 0 mean 1.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(svg []byte, format string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(converter)
	if err != nil {
		return nil, ErrConverterMissing
	}
	var out, stderr bytes.Buffer
	cmd := exec.Command(path, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &out, &stderr
	if err := cmd.Run(); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "%s to %s: %s",
			converter, format, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
