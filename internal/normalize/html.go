package normalize

import (
	"log"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

var converter = md.NewConverter("", true, nil)

// CleanContent converts HTML fragments some providers embed in article
// content into markdown text. Plain text passes through untouched, and a
// failed conversion keeps the original content rather than losing it.
func CleanContent(content string) string {
	if !strings.Contains(content, "<") {
		return content
	}

	converted, err := converter.ConvertString(content)
	if err != nil {
		log.Printf("Warning: failed to convert HTML content: %v", err)
		return content
	}
	return strings.TrimSpace(converted)
}
