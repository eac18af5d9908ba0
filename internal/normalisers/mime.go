package normalisers

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/askdocs/internal/normalisers/docx"
)

// extensionTypes covers extensions the platform MIME table may not know.
var extensionTypes = map[string]string{
	".pdf":      "application/pdf",
	".docx":     docx.MIMEType,
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".rst":      "text/x-rst",
	".csv":      "text/csv",
	".tsv":      "text/tab-separated-values",
	".json":     "application/json",
	".yaml":     "application/x-yaml",
	".yml":      "application/x-yaml",
	".toml":     "application/toml",
}

// DetectMIMEType resolves a MIME type from the file extension, falling
// back to content sniffing. Parameters such as charset are stripped.
func DetectMIMEType(name string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return stripParams(t)
		}
	}
	if len(content) == 0 {
		return "text/plain"
	}
	return stripParams(http.DetectContentType(content))
}

// ResolveMIMEType prefers a known extension over the reported type, and the
// reported type over sniffing. application/octet-stream counts as unreported.
func ResolveMIMEType(name, reported string, content []byte) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	if reported = stripParams(reported); reported != "" && reported != "application/octet-stream" {
		return reported
	}
	return DetectMIMEType(name, content)
}

func stripParams(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(mimeType)
}
