package metamodel

import "fmt"

// MetadataLoadError is returned by FromDocument when a snapshot cannot be
// turned back into a registry. Err holds the underlying resolution failure.
type MetadataLoadError struct {
	ModelClass string
	Err        error
}

func (e *MetadataLoadError) Error() string {
	if e.ModelClass == "" {
		return fmt.Sprintf("cannot load metadata: %v", e.Err)
	}
	return fmt.Sprintf("cannot load metadata for %s: %v", e.ModelClass, e.Err)
}

func (e *MetadataLoadError) Unwrap() error {
	return e.Err
}

// EdgeResolutionError means a many-to-many association points at an entity
// type that is not registered. It indicates a corrupt registry.
type EdgeResolutionError struct {
	JoinTable  string
	EntityType string
}

func (e *EdgeResolutionError) Error() string {
	return fmt.Sprintf("join table %s: entity type %s is not registered", e.JoinTable, e.EntityType)
}
