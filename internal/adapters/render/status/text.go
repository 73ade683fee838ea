package status

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// plainText flattens the HTML fragments vendors return into terminal text.
// Block elements become line breaks and <b>/<strong> use the bold style.
func plainText(fragment string, s styles) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	bold := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(blankRuns.ReplaceAllString(b.String(), "\n\n"))
		case html.TextToken:
			text := strings.ReplaceAll(string(tokenizer.Text()), `\.`, ".")
			if bold > 0 {
				text = s.bold.Render(text)
			}
			b.WriteString(text)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch atom.Lookup(name) {
			case atom.Br:
				b.WriteString("\n")
			case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.Li, atom.Tr:
				b.WriteString("\n")
				if atom.Lookup(name) == atom.Li {
					b.WriteString("- ")
				}
			case atom.B, atom.Strong:
				bold++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch atom.Lookup(name) {
			case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4:
				b.WriteString("\n")
			case atom.B, atom.Strong:
				if bold > 0 {
					bold--
				}
			}
		}
	}
}
