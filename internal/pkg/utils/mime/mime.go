package mime

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Asset kinds, matching model.AssetType values.
const (
	KindFile  = "file"
	KindImage = "image"
	KindCode  = "code"
	KindDoc   = "doc"
)

// extMimeMap refines "text/plain" for formats content sniffing cannot tell apart.
var extMimeMap = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".csv":      "text/csv",
	".json":     "application/json",
	".html":     "text/html",
	".css":      "text/css",
	".js":       "text/javascript",
	".ts":       "text/typescript",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".java":     "text/x-java",
	".c":        "text/x-c",
	".cpp":      "text/x-c++",
	".h":        "text/x-c",
	".sh":       "text/x-shellscript",
	".sql":      "text/x-sql",
	".toml":     "text/x-toml",
}

var docMimes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument",
	"application/vnd.ms-",
	"application/vnd.oasis.opendocument",
	"application/rtf",
	"text/markdown",
	"text/csv",
}

// DetectMimeType sniffs content and falls back to the extension for plain text.
func DetectMimeType(content []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType := mimetype.Detect(content).String()

	if strings.HasPrefix(contentType, "text/plain") {
		if refined, ok := extMimeMap[ext]; ok {
			return strings.Replace(contentType, "text/plain", refined, 1)
		}
	}
	return contentType
}

// AssetKind classifies a detected MIME type into one of the asset kinds.
func AssetKind(mimeType string) string {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case strings.HasPrefix(mt, "text/x-"),
		strings.HasPrefix(mt, "text/javascript"),
		strings.HasPrefix(mt, "text/typescript"),
		strings.HasPrefix(mt, "application/json"):
		return KindCode
	}
	for _, p := range docMimes {
		if strings.HasPrefix(mt, p) {
			return KindDoc
		}
	}
	return KindFile
}
