package urilaga_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rifqialba/urilaga"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 6, 0},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{11, 5, 3},
		{5, 0, 0},
		{-1, 6, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, urilaga.TotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestImageQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, urilaga.ImageQuery{Page: 1, Limit: 6}.Offset())
	assert.Equal(t, 12, urilaga.ImageQuery{Page: 3, Limit: 6}.Offset())
}

func TestIsValidTableName(t *testing.T) {
	tests := map[string]bool{
		"users":                 true,
		"_images":               true,
		"images_2024":           true,
		strings.Repeat("a", 63): true,
		strings.Repeat("a", 64): false,
		"Users":                 false,
		"2images":               false,
		"images-old":            false,
		"":                      false,
	}

	for name, want := range tests {
		assert.Equal(t, want, urilaga.IsValidTableName(name), "name %q", name)
	}
}

func TestTables_Validate(t *testing.T) {
	tests := []struct {
		name      string
		tables    urilaga.Tables
		wantError string
	}{
		{"valid", urilaga.Tables{Users: "users", Images: "images"}, ""},
		{"missing users", urilaga.Tables{Images: "images"}, "users table name cannot be empty"},
		{"missing images", urilaga.Tables{Users: "users"}, "images table name cannot be empty"},
		{"invalid name", urilaga.Tables{Users: "users", Images: "Images"}, "invalid table name: Images"},
		{"same table", urilaga.Tables{Users: "t", Images: "t"}, "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tables.Validate()
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantError)
		})
	}
}
