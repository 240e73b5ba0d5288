package preview

import (
	"encoding/json"
	"log/slog"
	"os"
)

// WriteSummary copies the human-readable summary out of the preview at
// jsonPath into outputPath. Any problem is logged and reported as false;
// nothing is written in that case.
func WriteSummary(jsonPath, outputPath string, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}

	contents, err := os.ReadFile(jsonPath)
	if err != nil {
		logger.Warn("summary.read_error", "path", jsonPath, "error", err)
		return false
	}

	var doc map[string]any
	if err := json.Unmarshal(contents, &doc); err != nil {
		logger.Warn("summary.decode_error", "path", jsonPath, "error", err)
		return false
	}

	summary, _ := doc[SummaryField].(string)
	if summary == "" {
		logger.Warn("summary.missing", "path", jsonPath, "field", SummaryField)
		return false
	}

	if err := os.WriteFile(outputPath, []byte(summary), 0o644); err != nil {
		logger.Warn("summary.write_error", "path", outputPath, "error", err)
		return false
	}

	logger.Info("summary.write", "path", outputPath, "bytes", len(summary))
	return true
}
