package metamodel

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// ErrUnknownEntityType is returned when no resolver knows an entity type identifier.
var ErrUnknownEntityType = errors.New("unknown entity type")

// EntityType is the resolved form of an entity type identifier.
type EntityType struct {
	// Name is the fully-qualified identifier, e.g. "models.User".
	Name string
	// Table is the table backing the entity.
	Table string
}

// TypeResolver maps a fully-qualified entity type identifier to an EntityType.
type TypeResolver interface {
	ResolveEntityType(name string) (EntityType, error)
}

// EntityCatalog is an explicit set of known entity types.
type EntityCatalog struct {
	types map[string]EntityType
}

// NewEntityCatalog creates an empty catalog
func NewEntityCatalog() *EntityCatalog {
	return &EntityCatalog{
		types: make(map[string]EntityType),
	}
}

// Add makes an entity type resolvable by its name
func (c *EntityCatalog) Add(entity EntityType) {
	c.types[entity.Name] = entity
}

// Len returns the number of known entity types
func (c *EntityCatalog) Len() int {
	return len(c.types)
}

func (c *EntityCatalog) ResolveEntityType(name string) (EntityType, error) {
	entity, ok := c.types[name]
	if !ok {
		return EntityType{}, fmt.Errorf("%w: %s", ErrUnknownEntityType, name)
	}
	return entity, nil
}

// ConventionResolver derives the table from the last segment of the identifier.
// A capitalized segment names a type and is underscored and pluralized
// ("models.UserRole" -> "user_roles"); a lower-case segment is the table itself.
type ConventionResolver struct{}

func (ConventionResolver) ResolveEntityType(name string) (EntityType, error) {
	segment := LastSegment(name)
	if segment == "" {
		return EntityType{}, fmt.Errorf("%w: %q", ErrUnknownEntityType, name)
	}
	return EntityType{Name: name, Table: TableForSegment(segment)}, nil
}

// Resolvers tries each resolver in order and returns the first match.
type Resolvers []TypeResolver

func (rs Resolvers) ResolveEntityType(name string) (EntityType, error) {
	for _, r := range rs {
		entity, err := r.ResolveEntityType(name)
		if err == nil {
			return entity, nil
		}
		if !errors.Is(err, ErrUnknownEntityType) {
			return EntityType{}, err
		}
	}
	return EntityType{}, fmt.Errorf("%w: %s", ErrUnknownEntityType, name)
}

// LastSegment returns the part of a qualified identifier after the final dot.
func LastSegment(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// TableForSegment applies the naming convention used by ConventionResolver.
func TableForSegment(segment string) string {
	if segment == "" {
		return ""
	}
	if unicode.IsUpper([]rune(segment)[0]) {
		return inflect.Pluralize(inflect.Underscore(segment))
	}
	return segment
}

// TypeNameForTable returns the conventional type name for a table ("user_roles" -> "UserRole").
func TypeNameForTable(table string) string {
	return inflect.Camelize(inflect.Singularize(table))
}
