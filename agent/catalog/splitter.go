package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/schema"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// splitText cuts text into overlapping windows of at most size runes,
// preferring to end a chunk on whitespace.
func splitText(source, text string, size, overlap int) []*schema.Document {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}

	runes := []rune(strings.TrimSpace(text))
	docs := make([]*schema.Document, 0, len(runes)/size+1)
	for start := 0; start < len(runes); {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lastSpace(runes[start:end]); cut > size/2 {
			end = start + cut
		}

		content := strings.TrimSpace(string(runes[start:end]))
		if content != "" {
			docs = append(docs, &schema.Document{
				ID:       fmt.Sprintf("%s#%d", source, len(docs)),
				Content:  content,
				MetaData: map[string]any{"source": source, "offset": start},
			})
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return docs
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if unicode.IsSpace(rs[i]) {
			return i
		}
	}
	return -1
}
