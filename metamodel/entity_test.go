package metamodel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConventionResolver(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{"models.User", "users"},
		{"models.UserRole", "user_roles"},
		{"app.billing.Invoice", "invoices"},
		{"models.person", "person"},
		{"Category", "categories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, err := ConventionResolver{}.ResolveEntityType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, entity.Name)
			assert.Equal(t, tt.table, entity.Table)
		})
	}

	t.Run("empty_segment", func(t *testing.T) {
		_, err := ConventionResolver{}.ResolveEntityType("models.")
		assert.True(t, errors.Is(err, ErrUnknownEntityType))
	})
}

func TestResolvers(t *testing.T) {
	catalog := NewEntityCatalog()
	catalog.Add(EntityType{Name: "models.Person", Table: "person"})

	chain := Resolvers{catalog, ConventionResolver{}}

	entity, err := chain.ResolveEntityType("models.Person")
	require.NoError(t, err)
	assert.Equal(t, "person", entity.Table)

	entity, err = chain.ResolveEntityType("models.Post")
	require.NoError(t, err)
	assert.Equal(t, "posts", entity.Table)

	_, err = Resolvers{catalog}.ResolveEntityType("models.Post")
	assert.True(t, errors.Is(err, ErrUnknownEntityType))
	assert.Equal(t, 1, catalog.Len())
}

func TestTypeNameForTable(t *testing.T) {
	assert.Equal(t, "User", TypeNameForTable("users"))
	assert.Equal(t, "UserRole", TypeNameForTable("user_roles"))
	assert.Equal(t, "users", TableForSegment(TypeNameForTable("users")))
}
