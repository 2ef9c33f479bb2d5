package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storychain-server/internal/service"
)

func TestParseRoster(t *testing.T) {
	t.Run("Single character", func(t *testing.T) {
		names, err := service.ParseRoster("Alice")
		assert.NoError(t, err)
		assert.Equal(t, []string{"Alice"}, names)
	})

	t.Run("Preserves first-seen order and trims whitespace", func(t *testing.T) {
		names, err := service.ParseRoster("  Zoe ,Alice,  Mid ")
		assert.NoError(t, err)
		assert.Equal(t, []string{"Zoe", "Alice", "Mid"}, names)
	})

	t.Run("Skips empty segments", func(t *testing.T) {
		names, err := service.ParseRoster("Alice,, ,Bob,")
		assert.NoError(t, err)
		assert.Equal(t, []string{"Alice", "Bob"}, names)
	})

	t.Run("Keeps original casing of first occurrence", func(t *testing.T) {
		names, err := service.ParseRoster("McCoy, Uhura")
		assert.NoError(t, err)
		assert.Equal(t, []string{"McCoy", "Uhura"}, names)
	})

	t.Run("Empty input", func(t *testing.T) {
		_, err := service.ParseRoster("")
		assert.ErrorIs(t, err, service.ErrEmptyRoster)
	})

	t.Run("Only separators and whitespace", func(t *testing.T) {
		_, err := service.ParseRoster(" , ,, ")
		assert.ErrorIs(t, err, service.ErrEmptyRoster)
	})

	t.Run("Too many characters", func(t *testing.T) {
		_, err := service.ParseRoster("A,B,C,D,E,F")
		assert.ErrorIs(t, err, service.ErrRosterTooLarge)
	})

	t.Run("Exactly five characters is allowed", func(t *testing.T) {
		names, err := service.ParseRoster("A,B,C,D,E")
		assert.NoError(t, err)
		assert.Len(t, names, 5)
	})

	t.Run("Case-insensitive duplicate", func(t *testing.T) {
		_, err := service.ParseRoster("Alice, ALICE")
		assert.ErrorIs(t, err, service.ErrDuplicateCharacter)
	})

	t.Run("Duplicate detected before size check", func(t *testing.T) {
		// Six entries but the duplicate pair is reported first.
		_, err := service.ParseRoster("A,a,B,C,D,E")
		assert.ErrorIs(t, err, service.ErrDuplicateCharacter)
	})
}
