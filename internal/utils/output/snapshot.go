// internal/utils/output/snapshot.go
package output

import (
	"os"
	"path/filepath"
	"strings"
)

// SaveSnapshot writes a rendered page for offline selector work. A .md
// path gets Markdown; anything else gets cleaned, indented HTML.
func SaveSnapshot(source, pageURL, path string) error {
	doc, err := CleanHTML(source)
	if err != nil {
		return err
	}

	var content string
	if strings.EqualFold(filepath.Ext(path), ".md") {
		if content, err = ToMarkdown(doc, pageURL); err != nil {
			return err
		}
	} else {
		content = PrettyPrint(doc)
	}
	return os.WriteFile(path, []byte(content), 0644)
}
