package providers

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alc6/metareg/metamodel"
)

func TestFormatSchemaInfo(t *testing.T) {
	output := FormatSchemaInfo(blogTables())

	assert.Contains(t, output, "Table: users")
	assert.Contains(t, output, "  - email VARCHAR(255) NOT NULL")
	assert.Contains(t, output, "  - id INTEGER NOT NULL (PRIMARY KEY)")
	assert.Contains(t, output, "  - idx_users_email on (email) (UNIQUE)")
	assert.Contains(t, output, "Foreign Keys:\n  - user_id -> users(id)")
}

func TestFormatMetaModels(t *testing.T) {
	registry, _, err := BuildMetaModels(blogTables(), BuildOptions{DBName: "blog", DBType: "postgres", Namespace: "models"})
	require.NoError(t, err)

	output := FormatMetaModels(registry)
	assert.Contains(t, output, "Model: models.User\n  Table: users (postgres/blog)\n  Primary Key: id\n")
	assert.Contains(t, output, "    - email VARCHAR(255)\n")
	assert.Contains(t, output, "    - body TEXT\n")
	assert.Contains(t, output, "    - has many models.Post via user_id\n")
	assert.Contains(t, output, "    - belongs to models.User via user_id\n")
	assert.Contains(t, output, "    - has many models.Tag through posts_tags (post_id, tag_id)\n")
}

func TestDescribePolymorphicAssociations(t *testing.T) {
	assert.Equal(t, "has many app.Image as post",
		describeAssociation(&metamodel.OneToManyPolymorphic{SourceType: "app.Post", TargetType: "app.Image", TypeLabel: "post"}))
	assert.Equal(t, "belongs to app.Post as post",
		describeAssociation(&metamodel.BelongsToPolymorphic{SourceType: "app.Image", TargetType: "app.Post", TypeLabel: "post"}))
}

func TestMetadataType(t *testing.T) {
	tests := []struct {
		col  Column
		typ  string
		size *int
	}{
		{Column{DataType: "character varying"}, "VARCHAR", nil},
		{Column{DataType: "numeric", NumericPrecision: sql.NullInt64{Int64: 10, Valid: true}, NumericScale: sql.NullInt64{Int64: 2, Valid: true}}, "DECIMAL", intPtr(10)},
		{Column{DataType: "timestamp with time zone"}, "TIMESTAMPTZ", nil},
		{Column{DataType: "citext"}, "CITEXT", nil},
	}

	for _, tt := range tests {
		t.Run(tt.col.DataType, func(t *testing.T) {
			assert.Equal(t, tt.typ, metadataType(tt.col))
			assert.Equal(t, tt.size, metadataSize(tt.col))
		})
	}
}

func intPtr(n int) *int {
	return &n
}
