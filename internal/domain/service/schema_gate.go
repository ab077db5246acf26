package service

import "context"

// SchemaGate reports whether the persistence schema is at the latest version.
type SchemaGate interface {
	// Ready returns ErrSchemaNotReady until the schema is current.
	Ready(ctx context.Context) error
}
