// Package htmlsafe reduces model generated HTML to a small allowlist of
// formatting tags.
package htmlsafe

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var allowedTags = map[string]bool{
	"div": true, "p": true, "br": true, "strong": true, "em": true,
	"ul": true, "ol": true, "li": true, "a": true, "code": true,
	"pre": true, "blockquote": true, "span": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var allowedAttrs = map[string]map[string]bool{
	"a":    {"href": true, "title": true, "target": true, "rel": true},
	"span": {"class": true},
	"div":  {"class": true},
}

var voidTags = map[string]bool{"br": true}

// dropped together with everything inside them
var rawTextTags = map[string]bool{"script": true, "style": true, "iframe": true, "object": true, "noscript": true}

// Sanitize keeps allowed tags and attributes, strips the rest but keeps their
// text, and closes any element left open so the result nests safely inside a
// wrapper.
func Sanitize(input string) string {
	z := html.NewTokenizer(strings.NewReader(input))
	var out bytes.Buffer
	var open []string
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return ""
			}
			for i := len(open) - 1; i >= 0; i-- {
				out.WriteString("</" + open[i] + ">")
			}
			return out.String()

		case html.TextToken:
			if skipDepth == 0 {
				out.WriteString(html.EscapeString(string(z.Text())))
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if rawTextTags[tag] {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 || !allowedTags[tag] {
				continue
			}
			out.WriteString("<" + tag)
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if attr := string(key); allowedAttrs[tag][attr] && safeAttr(attr, string(val)) {
					out.WriteString(" " + attr + `="` + html.EscapeString(string(val)) + `"`)
				}
			}
			out.WriteString(">")
			if !voidTags[tag] && tt == html.StartTagToken {
				open = append(open, tag)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if rawTextTags[tag] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] != tag {
					continue
				}
				for j := len(open) - 1; j >= i; j-- {
					out.WriteString("</" + open[j] + ">")
				}
				open = open[:i]
				break
			}
		}
	}
}

func safeAttr(name, value string) bool {
	if name != "href" {
		return true
	}
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}
