package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeterministicID(t *testing.T) {
	t.Run("same parts always yield the same id", func(t *testing.T) {
		assert.Equal(t,
			DeterministicID("queue-item", "7"),
			DeterministicID("queue-item", "7"))
	})

	t.Run("different parts yield different ids", func(t *testing.T) {
		assert.NotEqual(t,
			DeterministicID("queue-item", "7"),
			DeterministicID("queue-item", "8"))
		assert.NotEqual(t,
			DeterministicID("renewal", "11", "0"),
			DeterministicID("renewal", "11", "1"))
	})

	t.Run("adjacent parts do not run together", func(t *testing.T) {
		assert.NotEqual(t,
			DeterministicID("renewal", "11", "0"),
			DeterministicID("renewal", "1", "10"))
	})

	t.Run("result parses as a uuid", func(t *testing.T) {
		id := DeterministicID("renewal", "11", "0")
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})
}
