package canned_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/provider/canned"
)

func readAll(t *testing.T, chunks <-chan domain.StreamChunk) ([]string, domain.StreamChunk) {
	t.Helper()
	var deltas []string
	for chunk := range chunks {
		if chunk.Done || chunk.Error != nil {
			return deltas, chunk
		}
		deltas = append(deltas, chunk.Delta)
	}
	t.Fatal("stream closed without terminal chunk")
	return nil, domain.StreamChunk{}
}

func TestProfiles(t *testing.T) {
	tests := []struct {
		name    string
		profile canned.Profile
		id      string
		check   func(t *testing.T, deltas []string)
	}{
		{
			name:    "should stream fast chat in short rune chunks",
			profile: canned.FastChat(),
			id:      domain.ProviderFastChat,
			check: func(t *testing.T, deltas []string) {
				for _, delta := range deltas {
					require.LessOrEqual(t, utf8.RuneCountInString(delta), 12)
				}
			},
		},
		{
			name:    "should stream summaries by sentence",
			profile: canned.Summarization(),
			id:      domain.ProviderSummarization,
			check: func(t *testing.T, deltas []string) {
				require.Len(t, deltas, 3)
			},
		},
		{
			name:    "should stream code by line",
			profile: canned.CodeGeneration(),
			id:      domain.ProviderCodeSpecialist,
			check: func(t *testing.T, deltas []string) {
				for _, delta := range deltas {
					require.True(t, strings.HasSuffix(delta, "\n"))
				}
			},
		},
		{
			name:    "should stream general answers by word",
			profile: canned.GeneralPurpose(),
			id:      domain.ProviderGeneralPurpose,
			check: func(t *testing.T, deltas []string) {
				for _, delta := range deltas[:len(deltas)-1] {
					require.Equal(t, 1, strings.Count(delta, " "))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := canned.NewProvider(tt.profile, canned.WithDelay(0))
			require.Equal(t, tt.id, provider.Name())

			chunks, err := provider.Generate(context.Background(), "context block\nWhen does term start?")
			require.NoError(t, err)

			deltas, terminal := readAll(t, chunks)
			require.True(t, terminal.Done)
			require.NoError(t, terminal.Error)
			require.NotEmpty(t, deltas)
			require.Equal(t, tt.profile.Reply("When does term start?"), strings.Join(deltas, ""))
			tt.check(t, deltas)
		})
	}
}

func TestProvider_Generate(t *testing.T) {
	t.Run("should be deterministic", func(t *testing.T) {
		provider := canned.NewProvider(canned.GeneralPurpose(), canned.WithDelay(0))

		first, err := provider.Generate(context.Background(), "What is the pricing model?")
		require.NoError(t, err)
		second, err := provider.Generate(context.Background(), "What is the pricing model?")
		require.NoError(t, err)

		a, _ := readAll(t, first)
		b, _ := readAll(t, second)
		require.Equal(t, a, b)
	})

	t.Run("should end with injected mid-stream failure", func(t *testing.T) {
		boom := errors.New("backend dropped connection")
		provider := canned.NewProvider(canned.GeneralPurpose(), canned.WithDelay(0), canned.WithFailureAfter(2, boom))

		chunks, err := provider.Generate(context.Background(), "hello there")
		require.NoError(t, err)

		deltas, terminal := readAll(t, chunks)
		require.Len(t, deltas, 2)
		require.ErrorIs(t, terminal.Error, boom)
		_, open := <-chunks
		require.False(t, open)
	})

	t.Run("should fail after full reply when failure point is past the end", func(t *testing.T) {
		boom := errors.New("late failure")
		provider := canned.NewProvider(canned.FastChat(), canned.WithDelay(0), canned.WithFailureAfter(10_000, boom))

		chunks, err := provider.Generate(context.Background(), "hi")
		require.NoError(t, err)

		_, terminal := readAll(t, chunks)
		require.ErrorIs(t, terminal.Error, boom)
	})

	t.Run("should terminate with context error when cancelled", func(t *testing.T) {
		provider := canned.NewProvider(canned.Summarization())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		chunks, err := provider.Generate(ctx, "hello")
		require.NoError(t, err)

		_, terminal := readAll(t, chunks)
		require.ErrorIs(t, terminal.Error, context.Canceled)
	})
}
