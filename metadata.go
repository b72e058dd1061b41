package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alc6/metareg/metamodel"
	"github.com/alc6/metareg/providers"
)

// buildRegistry introspects db and turns the tables into a registry
func buildRegistry(ctx context.Context, db *sql.DB, extractor SchemaExtractor, cfg *Config) ([]providers.Table, *metamodel.Registry, error) {
	tables, err := extractor.ExtractSchema(ctx, db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract schema: %w", err)
	}

	registry, catalog, err := providers.BuildMetaModels(tables, providers.BuildOptions{
		DBName:    cfg.DBName,
		DBType:    extractor.DBType(),
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build metadata: %w", err)
	}

	slog.Info("schema introspected", "tables", len(tables), "entityTypes", catalog.Len())
	return tables, registry, nil
}

// encodeSnapshot serializes the registry in the given format
func encodeSnapshot(registry *metamodel.Registry, format string) ([]byte, error) {
	f, err := metamodel.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return metamodel.Marshal(registry.ToDocument(), f)
}

// decodeSnapshot restores a registry, resolving entity types by naming convention
func decodeSnapshot(data []byte, format string) (*metamodel.Registry, error) {
	f, err := metamodel.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	doc, err := metamodel.Unmarshal(data, f)
	if err != nil {
		return nil, err
	}

	return metamodel.FromDocument(doc, metamodel.ConventionResolver{})
}

// readSnapshot loads a snapshot file, picking the format from its extension
func readSnapshot(path string) (*metamodel.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return decodeSnapshot(data, string(metamodel.FormatFromPath(path)))
}

// writeSnapshot writes the encoded registry to outputFile, or to w when outputFile is empty
func writeSnapshot(w io.Writer, registry *metamodel.Registry, format, outputFile string) error {
	data, err := encodeSnapshot(registry, format)
	if err != nil {
		return err
	}

	if outputFile == "" {
		_, err = w.Write(data)
		return err
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	slog.Info("snapshot written", "file", outputFile, "format", format, "models", registry.Len())
	return nil
}
