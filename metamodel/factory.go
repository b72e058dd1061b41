package metamodel

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownAssociation is returned for a discriminator with no registered factory.
var ErrUnknownAssociation = errors.New("unknown association class")

// AssociationFactory rebuilds an association from its flat field map.
type AssociationFactory func(fields map[string]any) (Association, error)

// AssociationRegistry maps association discriminators to factories.
// It is populated at startup and read afterwards.
type AssociationRegistry struct {
	factories map[string]AssociationFactory
}

// NewAssociationRegistry creates an empty association registry
func NewAssociationRegistry() *AssociationRegistry {
	return &AssociationRegistry{
		factories: make(map[string]AssociationFactory),
	}
}

// DefaultAssociations returns a registry holding every built-in association variant
func DefaultAssociations() *AssociationRegistry {
	r := NewAssociationRegistry()
	r.Register(ClassBelongsTo, newBelongsTo)
	r.Register(ClassOneToMany, newOneToMany)
	r.Register(ClassManyToMany, newManyToMany)
	r.Register(ClassOneToManyPolymorphic, newOneToManyPolymorphic)
	r.Register(ClassBelongsToPolymorphic, newBelongsToPolymorphic)
	return r
}

// Register adds or replaces the factory for a discriminator
func (r *AssociationRegistry) Register(class string, factory AssociationFactory) {
	r.factories[class] = factory
}

// Classes returns the registered discriminators, sorted
func (r *AssociationRegistry) Classes() []string {
	classes := make([]string, 0, len(r.factories))
	for class := range r.factories {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// Build reconstructs an association from a field map carrying a "class" discriminator.
func (r *AssociationRegistry) Build(fields map[string]any) (Association, error) {
	class, err := StringField(fields, FieldClass)
	if err != nil {
		return nil, err
	}
	factory, ok := r.factories[class]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAssociation, class)
	}
	association, err := factory(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", class, err)
	}
	return association, nil
}
