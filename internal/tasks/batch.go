package tasks

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/desertthunder/archify/internal/shared"
)

// BatchExt is the required extension for batch files.
const BatchExt = ".batch"

// ReadBatchFile reads playlist names from a batch file, one per line.
// Blank lines are ignored; at least one name is required.
func ReadBatchFile(path string) ([]string, error) {
	if !strings.HasSuffix(path, BatchExt) {
		return nil, shared.ValidationError(shared.ErrInvalidBatch, "batch file must have a %s extension: %s", BatchExt, path)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, shared.ValidationError(shared.ErrInvalidBatch, "batch file not found: %s", path)
	}
	if err != nil {
		return nil, shared.FilesystemError("read "+path, err)
	}

	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, shared.ValidationError(shared.ErrInvalidBatch, "failed to read batch file %s: %v", path, err)
	}

	if len(names) == 0 {
		return nil, shared.ValidationError(shared.ErrInvalidBatch, "batch file contains no playlist names: %s", path)
	}
	return names, nil
}
