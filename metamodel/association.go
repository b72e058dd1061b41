package metamodel

import (
	"errors"
	"fmt"
)

// Association discriminators as they appear in the "class" field of a snapshot.
const (
	ClassBelongsTo            = "metamodel.BelongsTo"
	ClassOneToMany            = "metamodel.OneToMany"
	ClassManyToMany           = "metamodel.ManyToMany"
	ClassOneToManyPolymorphic = "metamodel.OneToManyPolymorphic"
	ClassBelongsToPolymorphic = "metamodel.BelongsToPolymorphic"
)

// Field names of the flat association map.
const (
	FieldClass          = "class"
	FieldSource         = "source"
	FieldTarget         = "target"
	FieldFKName         = "fkName"
	FieldJoin           = "join"
	FieldSourceFKName   = "sourceFkName"
	FieldTargetFKName   = "targetFkName"
	FieldTypeLabel      = "typeLabel"
	FieldParentTypeName = "parentTypeName"
)

// ErrMissingField is returned when an association field map lacks a required field.
var ErrMissingField = errors.New("missing association field")

// Association is a relationship between two entity types. Source and target are
// entity type identifiers resolved through the Registry, never descriptor pointers.
type Association interface {
	// Class is the discriminator stored in snapshots.
	Class() string
	Source() string
	Target() string
	// Fields returns the flat field map, including the discriminator.
	Fields() map[string]any
}

// BelongsTo is the many-to-one side of a foreign key: Source holds FKName.
type BelongsTo struct {
	SourceType string
	TargetType string
	FKName     string
}

func (a *BelongsTo) Class() string  { return ClassBelongsTo }
func (a *BelongsTo) Source() string { return a.SourceType }
func (a *BelongsTo) Target() string { return a.TargetType }

func (a *BelongsTo) Fields() map[string]any {
	return map[string]any{
		FieldClass:  ClassBelongsTo,
		FieldSource: a.SourceType,
		FieldTarget: a.TargetType,
		FieldFKName: a.FKName,
	}
}

// OneToMany is the parent side of a foreign key: Target holds FKName.
type OneToMany struct {
	SourceType string
	TargetType string
	FKName     string
}

func (a *OneToMany) Class() string  { return ClassOneToMany }
func (a *OneToMany) Source() string { return a.SourceType }
func (a *OneToMany) Target() string { return a.TargetType }

func (a *OneToMany) Fields() map[string]any {
	return map[string]any{
		FieldClass:  ClassOneToMany,
		FieldSource: a.SourceType,
		FieldTarget: a.TargetType,
		FieldFKName: a.FKName,
	}
}

// ManyToMany connects two entity types through a join table.
type ManyToMany struct {
	SourceType   string
	TargetType   string
	Join         string
	SourceFKName string
	TargetFKName string
}

func (a *ManyToMany) Class() string  { return ClassManyToMany }
func (a *ManyToMany) Source() string { return a.SourceType }
func (a *ManyToMany) Target() string { return a.TargetType }

func (a *ManyToMany) Fields() map[string]any {
	return map[string]any{
		FieldClass:        ClassManyToMany,
		FieldSource:       a.SourceType,
		FieldTarget:       a.TargetType,
		FieldJoin:         a.Join,
		FieldSourceFKName: a.SourceFKName,
		FieldTargetFKName: a.TargetFKName,
	}
}

// OneToManyPolymorphic is a parent whose children reference it by (type label, id).
type OneToManyPolymorphic struct {
	SourceType string
	TargetType string
	TypeLabel  string
}

func (a *OneToManyPolymorphic) Class() string  { return ClassOneToManyPolymorphic }
func (a *OneToManyPolymorphic) Source() string { return a.SourceType }
func (a *OneToManyPolymorphic) Target() string { return a.TargetType }

func (a *OneToManyPolymorphic) Fields() map[string]any {
	return map[string]any{
		FieldClass:     ClassOneToManyPolymorphic,
		FieldSource:    a.SourceType,
		FieldTarget:    a.TargetType,
		FieldTypeLabel: a.TypeLabel,
	}
}

// BelongsToPolymorphic is the child side of a polymorphic parent.
type BelongsToPolymorphic struct {
	SourceType     string
	TargetType     string
	TypeLabel      string
	ParentTypeName string
}

func (a *BelongsToPolymorphic) Class() string  { return ClassBelongsToPolymorphic }
func (a *BelongsToPolymorphic) Source() string { return a.SourceType }
func (a *BelongsToPolymorphic) Target() string { return a.TargetType }

func (a *BelongsToPolymorphic) Fields() map[string]any {
	return map[string]any{
		FieldClass:          ClassBelongsToPolymorphic,
		FieldSource:         a.SourceType,
		FieldTarget:         a.TargetType,
		FieldTypeLabel:      a.TypeLabel,
		FieldParentTypeName: a.ParentTypeName,
	}
}

// StringField reads a required string field from an association field map.
func StringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("association field %s: expected string, got %T", key, v)
	}
	return s, nil
}

// endpoints reads the source and target every variant carries.
func endpoints(fields map[string]any) (string, string, error) {
	source, err := StringField(fields, FieldSource)
	if err != nil {
		return "", "", err
	}
	target, err := StringField(fields, FieldTarget)
	if err != nil {
		return "", "", err
	}
	return source, target, nil
}

func newBelongsTo(fields map[string]any) (Association, error) {
	source, target, err := endpoints(fields)
	if err != nil {
		return nil, err
	}
	fk, err := StringField(fields, FieldFKName)
	if err != nil {
		return nil, err
	}
	return &BelongsTo{SourceType: source, TargetType: target, FKName: fk}, nil
}

func newOneToMany(fields map[string]any) (Association, error) {
	source, target, err := endpoints(fields)
	if err != nil {
		return nil, err
	}
	fk, err := StringField(fields, FieldFKName)
	if err != nil {
		return nil, err
	}
	return &OneToMany{SourceType: source, TargetType: target, FKName: fk}, nil
}

func newManyToMany(fields map[string]any) (Association, error) {
	source, target, err := endpoints(fields)
	if err != nil {
		return nil, err
	}
	join, err := StringField(fields, FieldJoin)
	if err != nil {
		return nil, err
	}
	sourceFK, err := StringField(fields, FieldSourceFKName)
	if err != nil {
		return nil, err
	}
	targetFK, err := StringField(fields, FieldTargetFKName)
	if err != nil {
		return nil, err
	}
	return &ManyToMany{
		SourceType:   source,
		TargetType:   target,
		Join:         join,
		SourceFKName: sourceFK,
		TargetFKName: targetFK,
	}, nil
}

func newOneToManyPolymorphic(fields map[string]any) (Association, error) {
	source, target, err := endpoints(fields)
	if err != nil {
		return nil, err
	}
	label, err := StringField(fields, FieldTypeLabel)
	if err != nil {
		return nil, err
	}
	return &OneToManyPolymorphic{SourceType: source, TargetType: target, TypeLabel: label}, nil
}

func newBelongsToPolymorphic(fields map[string]any) (Association, error) {
	source, target, err := endpoints(fields)
	if err != nil {
		return nil, err
	}
	label, err := StringField(fields, FieldTypeLabel)
	if err != nil {
		return nil, err
	}
	parent, err := StringField(fields, FieldParentTypeName)
	if err != nil {
		return nil, err
	}
	return &BelongsToPolymorphic{
		SourceType:     source,
		TargetType:     target,
		TypeLabel:      label,
		ParentTypeName: parent,
	}, nil
}
