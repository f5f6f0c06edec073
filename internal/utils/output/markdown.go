// internal/utils/output/markdown.go
package output

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/rostercrawl/internal/utils/url"
	"golang.org/x/net/html"
)

// ToMarkdown renders a cleaned document as GitHub-flavored Markdown, so
// the listing table becomes a Markdown table. Links are made absolute
// against pageURL.
func ToMarkdown(doc *html.Node, pageURL string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			str := fmt.Sprintf("[%s](%s)", content, urlutil.ResolveURL(pageURL, href))
			return &str
		},
	})

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", err
	}
	return converter.ConvertString(sb.String())
}
