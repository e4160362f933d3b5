package normalize

import (
	"testing"
)

func TestCleanContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "plain text untouched",
			content:  "Just a plain sentence.",
			expected: "Just a plain sentence.",
		},
		{
			name:     "paragraph",
			content:  "<p>First paragraph</p>",
			expected: "First paragraph",
		},
		{
			name:     "bold",
			content:  "<strong>Important</strong> update",
			expected: "**Important** update",
		},
		{
			name:     "link",
			content:  `Read <a href="http://example.com">more</a>`,
			expected: "Read [more](http://example.com)",
		},
		{
			name:     "heading",
			content:  "<h2>Section</h2>",
			expected: "## Section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanContent(tt.content)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}
