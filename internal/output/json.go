package output

import (
	"encoding/json"
)

// JSONFormatter formats results as JSON Lines (one JSON object per path).
type JSONFormatter struct {
	showContent bool
}

// NewJSONFormatter creates a JSONFormatter.
func NewJSONFormatter(showContent bool) *JSONFormatter {
	return &JSONFormatter{showContent: showContent}
}

// jsonResult is the JSON serialization format for a result.
type jsonResult struct {
	Path       string  `json:"path"`
	Found      bool    `json:"found"`
	FullPath   string  `json:"full_path,omitempty"`
	FolderPath string  `json:"folder_path,omitempty"`
	FileName   string  `json:"file_name,omitempty"`
	Size       int     `json:"size"`
	Content    *string `json:"content,omitempty"`
	Binary     bool    `json:"binary,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func (f *JSONFormatter) Format(buf []byte, result Result) []byte {
	jr := jsonResult{
		Path:  result.Path,
		Found: result.Found(),
	}
	if result.Err != nil {
		jr.Error = result.Err.Error()
	}
	if jr.Found {
		d := result.Descriptor
		jr.FullPath = d.FullPath()
		jr.FolderPath = d.FolderPath()
		jr.FileName = d.FileName()
		jr.Size = d.Len()
		if f.showContent {
			if IsBinary(d.Buffer()) {
				jr.Binary = true
			} else {
				content := string(d.Buffer())
				jr.Content = &content
			}
		}
	}

	data, _ := json.Marshal(jr)
	buf = append(buf, data...)
	buf = append(buf, '\n')
	return buf
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
