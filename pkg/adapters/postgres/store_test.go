package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/aretw0/colloquy/pkg/adapters/postgres"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Contract(t *testing.T) {
	url := os.Getenv("COLLOQUY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("COLLOQUY_TEST_DATABASE_URL not set")
	}

	store, err := postgres.New(context.Background(), url)
	require.NoError(t, err)
	defer store.Close()

	ports.RunSessionStoreContract(t, store)
}
