package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), Config{Kind: Memory})
	require.NoError(t, err)
	assert.Equal(t, Memory, store.Kind)
	assert.NotNil(t, store.Models.Books)
	assert.NotNil(t, store.Models.BookInstances)
	assert.NoError(t, store.Close(context.Background()))
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open(context.Background(), Config{Kind: "sqlite"})
	assert.EqualError(t, err, `unknown store "sqlite"`)
}
