package main

import (
	"bytes"
	"context"
	"shop-api/services"
	"shop-api/store/memstore"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	stores := memstore.New()
	catalog := services.NewCatalogService(stores.Categories, stores.Products, nil)
	ctx := context.Background()

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, seedCategories(ctx, catalog, cmd))
	assert.Contains(t, out.String(), "created Watches")

	out.Reset()
	require.NoError(t, seedCategories(ctx, catalog, cmd))
	assert.Contains(t, out.String(), "skipped Watches (exists)")

	categories, err := catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(sampleCategories))
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["seed"])
	assert.True(t, names["admin"])

	create, _, err := rootCmd.Find([]string{"admin", "create"})
	require.NoError(t, err)
	assert.Equal(t, "create", create.Name())
	assert.NotNil(t, create.Flags().Lookup("email"))
}
