// Package render turns HN comment HTML into plain text.
package render

import (
	"strings"

	xhtml "golang.org/x/net/html"
)

// PlainText converts HN's limited HTML (<p>, <a>, <i>, <code>, <pre>) to
// plain text for a dataset. Paragraphs become blank lines, inline markup
// is dropped, and every link keeps its target as " [href]" unless the
// anchor text already is the href, so media links survive as bare URLs.
func PlainText(raw string) string {
	if raw == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var inPre bool
	var anchorURL string
	var anchorStart int

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return strings.TrimSpace(sb.String())

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "p", "br":
				if sb.Len() > 0 {
					sb.WriteString("\n\n")
				}
			case "pre":
				inPre = true
				sb.WriteString("\n")
			case "a":
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						anchorURL = attr.Val
					}
				}
				anchorStart = sb.Len()
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "pre":
				inPre = false
				sb.WriteString("\n")
			case "a":
				if anchorURL != "" {
					text := strings.TrimSpace(sb.String()[anchorStart:])
					// HN truncates long link text with "...", so compare prefixes.
					if !strings.HasPrefix(anchorURL, strings.TrimSuffix(text, "...")) || text == "" {
						sb.WriteString(" [")
						sb.WriteString(anchorURL)
						sb.WriteString("]")
					} else if text != anchorURL {
						s := sb.String()[:anchorStart]
						sb.Reset()
						sb.WriteString(s)
						sb.WriteString(anchorURL)
					}
				}
				anchorURL = ""
			}

		case xhtml.TextToken:
			text := string(tokenizer.Text())
			if inPre {
				sb.WriteString(text)
			} else {
				sb.WriteString(strings.ReplaceAll(text, "\n", " "))
			}
		}
	}
}

// Wrap performs simple word wrapping to the given width. Lines indented
// by four spaces are treated as code and left alone.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var result strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.HasPrefix(paragraph, "    ") {
			result.WriteString(paragraph)
			result.WriteString("\n")
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		lineLen := 0
		for i, word := range words {
			wlen := len([]rune(word))
			if i > 0 && lineLen+1+wlen > width {
				result.WriteString("\n")
				lineLen = 0
			} else if i > 0 {
				result.WriteString(" ")
				lineLen++
			}
			result.WriteString(word)
			lineLen += wlen
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}
