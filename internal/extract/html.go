package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToLines flattens markup into the newline-separated text the extractors
// expect. The extension sometimes posts raw HTML straight out of the webmail
// DOM; block boundaries must become line breaks or the company extractor
// loses its line structure.
func HTMLToLines(src string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", err
	}

	doc.Find("script,style,head").Remove()
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})
	doc.Find("p,div,li,tr,td,h1,h2,h3,h4,h5,h6,table,blockquote").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := doc.Text()
	text = strings.ReplaceAll(text, " ", " ")

	// Collapse runs of blank lines but keep line structure intact.
	var out []string
	blank := false
	for _, ln := range strings.Split(text, "\n") {
		t := strings.TrimSpace(ln)
		if t == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, strings.Join(strings.Fields(t), " "))
	}
	return strings.Join(out, "\n"), nil
}
