// Package source loads the command template and identifier list that feed
// the batch executor.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoadTemplate reads the command template from path and trims surrounding
// whitespace. An unreadable or empty template is an error; the batch run
// must never start without one.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read command template %s: %w", path, err)
	}

	template := strings.TrimSpace(string(data))
	if template == "" {
		return "", fmt.Errorf("command template %s is empty", path)
	}

	return template, nil
}

// LoadIdentifiers reads identifiers from the first column of a CSV file.
//
// Cells are trimmed. Blank cells in otherwise non-empty rows are logged as
// warnings with their row number; fully empty rows are skipped silently.
// An empty result is not an error. Duplicates are preserved, as is order.
func LoadIdentifiers(path string, logger *slog.Logger) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open identifier file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows may have varying column counts

	var ids []string
	rowNum := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read identifier file %s: %w", path, err)
		}

		rowNum++
		if len(row) == 0 {
			continue
		}

		id := strings.TrimSpace(row[0])
		if id == "" {
			logger.Warn("empty_identifier", "file", path, "row", rowNum)
			continue
		}

		ids = append(ids, id)
	}

	if len(ids) == 0 {
		logger.Warn("no_identifiers_found", "file", path)
	}

	return ids, nil
}

// Render substitutes every occurrence of placeholder in template with the
// identifier's literal text. No escaping is performed: the template is
// operator-authored and may contain shell constructs (pipes, redirects).
func Render(template, placeholder, id string) string {
	return strings.ReplaceAll(template, placeholder, id)
}
