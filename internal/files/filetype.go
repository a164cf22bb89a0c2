package files

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType selects the extension given to a downloaded file
type FileType int

const (
	// Auto keeps dest as given, or appends the detected extension when dest has none
	Auto FileType = iota
	JSON
	PNG
	JPEG
	JPG
	XLSX
	TXT
)

var fileTypeNames = map[FileType]string{
	Auto: "auto",
	JSON: "json",
	PNG:  "png",
	JPEG: "jpeg",
	JPG:  "jpg",
	XLSX: "xlsx",
	TXT:  "txt",
}

func (t FileType) String() string {
	if name, ok := fileTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FileType(%d)", int(t))
}

// Extension returns the extension with its leading dot, or "" for Auto
func (t FileType) Extension() string {
	if t == Auto {
		return ""
	}
	if name, ok := fileTypeNames[t]; ok {
		return "." + name
	}
	return ""
}

// ParseFileType accepts a type name with or without a leading dot.
// The empty string is Auto.
func ParseFileType(s string) (FileType, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	if s == "" {
		return Auto, nil
	}
	for t, name := range fileTypeNames {
		if name == s {
			return t, nil
		}
	}
	return Auto, fmt.Errorf("unknown file type %q", s)
}

// WithExtension appends t's extension to path unless path already ends with it
func WithExtension(path string, t FileType) string {
	ext := t.Extension()
	if ext == "" || strings.EqualFold(filepath.Ext(path), ext) {
		return path
	}
	return path + ext
}
