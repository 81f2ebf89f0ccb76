package rag

import (
	"errors"
	"fmt"
)

// ErrInvalidChunking indicates chunk size and overlap cannot produce forward progress.
var ErrInvalidChunking = errors.New("invalid chunking parameters")

// SplitText cuts text into windows of at most chunkSize runes. Consecutive
// windows share overlap runes. The final window always ends at the end of text.
func SplitText(text string, chunkSize int, overlap int) ([]string, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk size %d, overlap %d", ErrInvalidChunking, chunkSize, overlap)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	stride := chunkSize - overlap
	chunks := make([]string, 0, len(runes)/stride+1)
	for start := 0; ; start += stride {
		end := min(start+chunkSize, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end >= len(runes) {
			break
		}
	}

	return chunks, nil
}
