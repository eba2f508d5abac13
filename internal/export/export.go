// Package export writes analysis results as JSON, Markdown, XLSX or PNG chart
// reports.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/qip-spc-cli/internal/diagnostic"
	"github.com/KaramelBytes/qip-spc-cli/internal/spc"
	"github.com/KaramelBytes/qip-spc-cli/internal/utils"
	"github.com/google/uuid"
)

// Format is a report file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatXLSX     Format = "xlsx"
	FormatPNG      Format = "png"
)

// ParseFormat accepts json, markdown (md), xlsx or png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "png", "chart":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("invalid format %q (use json|markdown|xlsx|png)", s)
	}
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	return f, err == nil
}

// Ext is the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Binary reports whether f cannot be printed to a terminal.
func (f Format) Binary() bool {
	return f == FormatXLSX || f == FormatPNG
}

// Report is one exported analysis.
type Report struct {
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Source      string               `json:"source"`
	Result      *spc.Result          `json:"result"`
	Insights    []diagnostic.Insight `json:"insights,omitempty"`
}

// NewReport stamps res with a fresh run ID.
func NewReport(source string, res *spc.Result, insights []diagnostic.Insight) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Result:      res,
		Insights:    insights,
	}
}

// Render encodes r in format f.
func Render(r *Report, f Format) ([]byte, error) {
	if r == nil || r.Result == nil {
		return nil, fmt.Errorf("render: empty report")
	}
	switch f {
	case FormatJSON:
		return utils.PrettyJSON(r)
	case FormatMarkdown:
		return []byte(Markdown(r)), nil
	case FormatXLSX:
		return XLSX(r)
	case FormatPNG:
		return Chart(r)
	default:
		return nil, fmt.Errorf("render: unsupported format %q", f)
	}
}

// Write renders r and writes it atomically to path.
func Write(path string, r *Report, f Format) error {
	b, err := Render(r, f)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write %s report: %w", f, err)
	}
	return nil
}
