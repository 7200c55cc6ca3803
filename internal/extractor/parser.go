package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/intelligrit/stk-captions/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadFrameInfo reads and decodes a *_info.json file.
func LoadFrameInfo(path string) (*model.FrameInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading info file: %w", err)
	}

	info, err := ParseFrameInfo(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return info, nil
}

// ParseFrameInfo decodes an info record.
// Tries a direct parse first, then the span from the first { to the last }.
func ParseFrameInfo(data []byte) (*model.FrameInfo, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))

	var info model.FrameInfo
	err := json.Unmarshal(data, &info)
	if err == nil {
		return &info, nil
	}

	if start := bytes.IndexByte(data, '{'); start >= 0 {
		if end := bytes.LastIndexByte(data, '}'); end > start {
			var retry model.FrameInfo
			if json.Unmarshal(data[start:end+1], &retry) == nil {
				return &retry, nil
			}
		}
	}

	return nil, fmt.Errorf("invalid info record (%v): %.200s", err, data)
}
