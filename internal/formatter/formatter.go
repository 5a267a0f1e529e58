// package formatter provides functions to export the tracked library to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/trax/internal/track"
)

// ExportToCSV converts tracked items to CSV format with columns: Key, Title, Platform, Kind, Progress, Status, Trackers
func ExportToCSV(items []*track.Item) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Key", "Title", "Platform", "Kind", "Progress", "Status", "Trackers"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.Key,
			item.Title,
			string(item.Platform),
			string(item.Kind),
			strconv.Itoa(item.SyncPoint()),
			string(item.Status),
			boundTrackers(item),
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

// ExportToMarkdown converts tracked items to Markdown format
func ExportToMarkdown(items []*track.Item) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Tracked Library\n\n")
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(items)))

	for i, item := range items {
		progressUnit := "ch"
		if item.Kind.Episodic() {
			progressUnit = "ep"
		}
		trackerPart := ""
		if item.Linked() {
			trackerPart = fmt.Sprintf(" → %s", boundTrackers(item))
		}
		buf.WriteString(fmt.Sprintf("%d. **%s** (%s) — %s %d%s%s\n",
			i+1, item.Title, item.Platform, item.Status, item.SyncPoint(), progressUnit, trackerPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts tracked items to plain text format
func ExportToText(items []*track.Item) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(items)))
	for i, item := range items {
		buf.WriteString(fmt.Sprintf("%d. %s [%s] at %d\n", i+1, item.Title, item.Platform, item.SyncPoint()))
	}

	return buf.Bytes(), nil
}

// Export renders items in the named format: csv, markdown, txt.
func Export(items []*track.Item, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(items)
	case "markdown", "md":
		return ExportToMarkdown(items)
	case "txt", "text":
		return ExportToText(items)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteExport renders items and writes them to a file.
func WriteExport(items []*track.Item, format, path string) error {
	data, err := Export(items, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// boundTrackers renders an item's tracker bindings as a stable
// semicolon-separated list.
func boundTrackers(item *track.Item) string {
	names := make([]string, 0, len(item.Bindings))
	for tracker := range item.Bindings {
		names = append(names, string(tracker))
	}
	sort.Strings(names)
	return strings.Join(names, ";")
}
