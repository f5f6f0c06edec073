package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const page = `<!DOCTYPE html><html><head><title>Skaters</title><script>var x = 1;</script><style>td{}</style></head>
<body>
<table id="tablepress-25058" style="width:100%">
<thead><tr class="row-1"><th class="column-1">Name</th><th class="column-2">Year</th></tr></thead>
<tbody><tr class="row-2" data-id="7"><td class="column-1"><a href="/skaters/rus/00001" onclick="x()">00001 | Ivan Ivanov</a></td><td class="column-2">2011</td></tr></tbody>
</table>
</body></html>`

func TestCleanHTML(t *testing.T) {
	doc, err := CleanHTML(page)
	if err != nil {
		t.Fatalf("CleanHTML failed: %v", err)
	}
	out := PrettyPrint(doc)

	for _, gone := range []string{"<script", "<style", "onclick", "data-id", "style="} {
		if strings.Contains(out, gone) {
			t.Errorf("expected %q to be removed:\n%s", gone, out)
		}
	}
	for _, kept := range []string{`id="tablepress-25058"`, `class="row-2"`, `href="/skaters/rus/00001"`} {
		if !strings.Contains(out, kept) {
			t.Errorf("expected %q to be kept:\n%s", kept, out)
		}
	}
}

func TestSaveSnapshot(t *testing.T) {
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "page.html")
	if err := SaveSnapshot(page, "https://allskaters.info/skaters/rus/", htmlPath); err != nil {
		t.Fatalf("SaveSnapshot html failed: %v", err)
	}
	data, _ := os.ReadFile(htmlPath)
	if !strings.Contains(string(data), "<table") {
		t.Errorf("expected HTML snapshot, got:\n%s", data)
	}

	mdPath := filepath.Join(dir, "page.md")
	if err := SaveSnapshot(page, "https://allskaters.info/skaters/rus/", mdPath); err != nil {
		t.Fatalf("SaveSnapshot md failed: %v", err)
	}
	data, _ = os.ReadFile(mdPath)
	md := string(data)
	if !strings.Contains(md, "(https://allskaters.info/skaters/rus/00001)") {
		t.Errorf("expected absolute profile link in markdown, got:\n%s", md)
	}
	if !strings.Contains(md, "|") {
		t.Errorf("expected a markdown table, got:\n%s", md)
	}
}
