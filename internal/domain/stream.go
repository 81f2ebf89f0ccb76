package domain

import (
	"context"
	"strings"
)

// TextStream returns a closed stream holding a single delta followed by Done.
func TextStream(text string) <-chan StreamChunk {
	chunks := make(chan StreamChunk, 2)
	chunks <- StreamChunk{Delta: text}
	chunks <- StreamChunk{Done: true}
	close(chunks)
	return chunks
}

// ErrorStream returns a closed stream whose only chunk is the error terminal.
func ErrorStream(err error) <-chan StreamChunk {
	chunks := make(chan StreamChunk, 1)
	chunks <- StreamChunk{Error: err}
	close(chunks)
	return chunks
}

// Collect reads a stream to its end and returns the concatenated deltas.
// It returns the terminal chunk's error, or ErrStreamTruncated when the
// channel closes without a terminal chunk.
func Collect(chunks <-chan StreamChunk) (string, error) {
	var b strings.Builder
	for chunk := range chunks {
		if chunk.Error != nil {
			drain(chunks)
			return b.String(), chunk.Error
		}
		b.WriteString(chunk.Delta)
		if chunk.Done {
			drain(chunks)
			return b.String(), nil
		}
	}
	return b.String(), ErrStreamTruncated
}

func drain(chunks <-chan StreamChunk) {
	for range chunks { //nolint:revive // discard anything sent after the terminal chunk
	}
}

// Tee duplicates src into two streams carrying the same chunks in the same order.
//
// src is read exactly once. Each branch buffers independently, so a slow reader
// on one branch never holds back the other. When ctx is done the first branch
// stops delivering and closes; the second branch is unaffected and runs until
// src closes.
func Tee(ctx context.Context, src <-chan StreamChunk) (<-chan StreamChunk, <-chan StreamChunk) {
	inLive := make(chan StreamChunk)
	inBackground := make(chan StreamChunk)
	live := make(chan StreamChunk)
	background := make(chan StreamChunk)

	go func() {
		defer close(inLive)
		defer close(inBackground)
		for chunk := range src {
			inLive <- chunk
			inBackground <- chunk
		}
	}()

	go pump(ctx.Done(), inLive, live)
	go pump(nil, inBackground, background)

	return live, background
}

// pump forwards in to out through an unbounded queue so receives from in never
// wait on the reader of out. Once abandon fires, queued and future chunks are
// dropped while in keeps being drained.
func pump(abandon <-chan struct{}, in <-chan StreamChunk, out chan<- StreamChunk) {
	defer close(out)

	var queue []StreamChunk
	abandoned := false

	for in != nil || len(queue) > 0 {
		var send chan<- StreamChunk
		var next StreamChunk
		if len(queue) > 0 {
			send = out
			next = queue[0]
		}

		select {
		case chunk, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			if !abandoned {
				queue = append(queue, chunk)
			}
		case send <- next:
			queue[0] = StreamChunk{}
			queue = queue[1:]
		case <-abandon:
			abandoned = true
			abandon = nil
			queue = nil
		}
	}
}
