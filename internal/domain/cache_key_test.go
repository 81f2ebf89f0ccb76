package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schoolhub/aigateway/internal/domain"
)

func TestCacheKey(t *testing.T) {
	t.Run("should be deterministic for identical inputs", func(t *testing.T) {
		first := domain.CacheKey(domain.RoleTeacher, "What is the pricing model?")
		second := domain.CacheKey(domain.RoleTeacher, "What is the pricing model?")

		require.Equal(t, first, second)
		require.Len(t, first, 64)
	})

	t.Run("should differ across roles", func(t *testing.T) {
		require.NotEqual(t,
			domain.CacheKey(domain.RoleTeacher, "When is the exam?"),
			domain.CacheKey(domain.RoleStudent, "When is the exam?"))
	})

	t.Run("should differ across prompts", func(t *testing.T) {
		require.NotEqual(t,
			domain.CacheKey(domain.RoleParent, "When is the exam?"),
			domain.CacheKey(domain.RoleParent, "When is the exam"))
	})

	t.Run("should not collide when field boundaries shift", func(t *testing.T) {
		require.NotEqual(t,
			domain.CacheKey(domain.Role("ab"), "c"),
			domain.CacheKey(domain.Role("a"), "bc"))
	})
}
