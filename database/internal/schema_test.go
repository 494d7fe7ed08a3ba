package internal_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rifqialba/urilaga/database/internal"
)

func TestCheckColumns(t *testing.T) {
	want := internal.TableSchema{
		Name: "images",
		Columns: map[string]internal.Column{
			"id":        {Type: "uuid"},
			"judul":     {Type: "text"},
			"image_url": {Type: "text", Nullable: true},
			"sign":      {Type: "text", Nullable: true},
		},
	}

	t.Run("match with extra columns", func(t *testing.T) {
		got := map[string]internal.Column{
			"id":        {Type: "uuid"},
			"judul":     {Type: "text"},
			"image_url": {Type: "text", Nullable: true},
			"sign":      {Type: "text", Nullable: true},
			"views":     {Type: "integer"},
		}
		assert.NoError(t, internal.CheckColumns(want, got))
	})

	t.Run("differences are sorted", func(t *testing.T) {
		got := map[string]internal.Column{
			"id":        {Type: "text"},
			"image_url": {Type: "text"},
		}

		err := internal.CheckColumns(want, got)
		var schemaErr *internal.SchemaError
		require.True(t, errors.As(err, &schemaErr))

		assert.Equal(t, "images", schemaErr.Table)
		assert.Equal(t, []string{"judul", "sign"}, schemaErr.Missing)
		assert.Equal(t, []string{
			"id: expected uuid, got text",
			"image_url: expected nullable=true, got nullable=false",
		}, schemaErr.Mismatched)
		assert.Contains(t, err.Error(), "missing columns: judul, sign")
	})
}
