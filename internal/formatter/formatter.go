// package formatter renders stored sets as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/fetchmixes/internal/models"
	"github.com/desertthunder/fetchmixes/internal/shared"
)

// Format names accepted by [Render].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatJSON     = "json"
)

// Formats lists every supported format name.
func Formats() []string {
	return []string{FormatCSV, FormatMarkdown, FormatText, FormatJSON}
}

const dateLayout = "2006-01-02"

// SetExport is a list of sets with an optional owning creator.
type SetExport struct {
	Creator     *models.Creator       `json:"creator,omitempty"`
	Sets        []models.PublishedSet `json:"sets"`
	GeneratedAt time.Time             `json:"generated_at"`
}

func (e *SetExport) title() string {
	if e.Creator != nil {
		return "Sets by " + e.Creator.Username
	}
	return "All sets"
}

// ExportToCSV converts a SetExport to CSV format with columns: ID, Creator ID, URL, Cover URL, Published, Updated
func ExportToCSV(export *SetExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Creator ID", "URL", "Cover URL", "Published", "Updated"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, set := range export.Sets {
		creatorID := ""
		if set.CreatorID != nil {
			creatorID = strconv.FormatInt(*set.CreatorID, 10)
		}
		record := []string{
			strconv.FormatInt(set.ID, 10),
			creatorID,
			set.URL,
			set.CoverURL,
			set.PublishedAt.UTC().Format(time.RFC3339),
			set.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a SetExport to a Markdown document with a table of sets
func ExportToMarkdown(export *SetExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.title())
	if export.Creator != nil {
		fmt.Fprintf(&buf, "**Mixcloud ID**: %s\n", export.Creator.MixcloudID)
	}
	fmt.Fprintf(&buf, "**Sets**: %d\n\n", len(export.Sets))

	if len(export.Sets) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Published | Set | Cover |\n")
	buf.WriteString("|---|-----------|-----|-------|\n")
	for i, set := range export.Sets {
		cover := ""
		if set.CoverURL != "" {
			cover = fmt.Sprintf("[cover](%s)", set.CoverURL)
		}
		fmt.Fprintf(&buf, "| %d | %s | [%s](%s) | %s |\n", i+1, set.PublishedAt.UTC().Format(dateLayout), setName(set.URL), set.URL, cover)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a SetExport to plain text format
func ExportToText(export *SetExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.title())
	fmt.Fprintf(&buf, "Sets: %d\n\n", len(export.Sets))

	for i, set := range export.Sets {
		fmt.Fprintf(&buf, "%d. %s %s\n", i+1, set.PublishedAt.UTC().Format(dateLayout), set.URL)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a SetExport to indented JSON
func ExportToJSON(export *SetExport) ([]byte, error) {
	if export.Sets == nil {
		copied := *export
		copied.Sets = []models.PublishedSet{}
		export = &copied
	}
	return shared.MarshalJSON(export, true)
}

// Render dispatches to the exporter for format.
func Render(export *SetExport, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown, "md":
		return ExportToMarkdown(export)
	case FormatText, "txt":
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats(), ", "))
	}
}

// DefaultFilename returns the file an export is written to when no path is given.
//
// Defaults to {username}_sets.{ext}, or sets.{ext} without a creator.
func DefaultFilename(export *SetExport, format string) string {
	base := "sets"
	if export.Creator != nil {
		base = export.Creator.Username + "_sets"
	}

	ext := strings.ToLower(format)
	switch ext {
	case FormatMarkdown:
		ext = "md"
	case FormatText:
		ext = "txt"
	}
	return base + "." + ext
}

// WriteExport renders export and writes it to path, returning the path written.
func WriteExport(export *SetExport, format, path string) (string, error) {
	data, err := Render(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", format, err)
	}

	if path == "" {
		path = DefaultFilename(export, format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// setName is the last path segment of a set URL, which is its slug.
func setName(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	return rawURL
}
