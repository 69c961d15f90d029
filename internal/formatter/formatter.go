// package formatter renders job sessions as text tables, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/audiovault/internal/models"
	"github.com/desertthunder/audiovault/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name or one of the file extensions txt, md and csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

var stageHeaders = []string{"Stage", "Status", "Progress", "Message"}

func stageRows(session models.Session) [][]string {
	rows := make([][]string, 0, len(models.Stages))
	for _, stage := range models.Stages {
		info := session.Stage(stage)
		rows = append(rows, []string{
			stage.String(),
			string(info.Status.Normalize()),
			strconv.Itoa(info.Progress) + "%",
			info.Message,
		})
	}
	return rows
}

// Render encodes session in format.
func Render(session models.Session, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return SessionToText(session)
	case FormatJSON:
		return shared.MarshalJSON(session, true)
	case FormatCSV:
		return SessionToCSV(session)
	case FormatMarkdown:
		return SessionToMarkdown(session)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// SessionToText renders a bordered stage table preceded by the session id and command.
func SessionToText(session models.Session) ([]byte, error) {
	var buf bytes.Buffer

	if session.ID != "" {
		buf.WriteString(fmt.Sprintf("Session: %s\n", session.ID))
	}
	if session.CurrentCommand != "" {
		buf.WriteString(fmt.Sprintf("Command: %s\n", session.CurrentCommand))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(stageHeaders...).
		Rows(stageRows(session)...)

	buf.WriteString(t.String())
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// SessionToCSV converts a session to CSV with columns: Stage, Status, Progress, Message
func SessionToCSV(session models.Session) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(stageHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range stageRows(session) {
		record[2] = strings.TrimSuffix(record[2], "%")
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

// SessionToMarkdown renders a session report with a stage table.
func SessionToMarkdown(session models.Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Session")
	if session.ID != "" {
		buf.WriteString(" " + session.ID)
	}
	buf.WriteString("\n\n")

	if session.Type != "" {
		buf.WriteString(fmt.Sprintf("**Type**: %s\n", session.Type))
	}
	if !session.StartedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Started**: %s\n", session.StartedAt.Format("2006-01-02 15:04:05")))
	}
	if session.CurrentCommand != "" {
		buf.WriteString(fmt.Sprintf("**Command**: `%s`\n", session.CurrentCommand))
	}
	buf.WriteString("\n")

	buf.WriteString("| " + strings.Join(stageHeaders, " | ") + " |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, row := range stageRows(session) {
		for i := range row {
			row[i] = strings.ReplaceAll(row[i], "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return buf.Bytes(), nil
}

// StageLine is the one-line summary printed on every stage update.
func StageLine(stage models.Stage, info models.ProcessInfo) string {
	return fmt.Sprintf("%-8s %-8s %3d%%  %s", stage, info.Status.Normalize(), info.Progress, info.Message)
}

// WriteSessionReport writes session to path in the format implied by its extension.
//
// Unknown extensions fall back to text.
func WriteSessionReport(session models.Session, path string) error {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		format = FormatText
	}

	data, err := Render(session, format)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
