package postgres

import (
	"context"
	"fmt"
)

// Identity values are never reused after a delete. clientes_email_key
// rejects the second of two concurrent inserts with the same email.
const createClientsTable = `
	CREATE TABLE IF NOT EXISTS clientes (
		id                  BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		nombre              VARCHAR(100) NOT NULL,
		email               VARCHAR(120) NOT NULL,
		telefono            VARCHAR(20),
		estado              VARCHAR(20)  NOT NULL DEFAULT 'activo',
		fecha_creacion      TIMESTAMPTZ  NOT NULL DEFAULT now(),
		fecha_actualizacion TIMESTAMPTZ  NOT NULL DEFAULT now(),
		CONSTRAINT clientes_email_key UNIQUE (email),
		CONSTRAINT clientes_estado_check CHECK (estado IN ('activo', 'inactivo')),
		CONSTRAINT clientes_fechas_check CHECK (fecha_actualizacion >= fecha_creacion)
	);
	CREATE INDEX IF NOT EXISTS clientes_nombre_idx ON clientes (nombre);
	CREATE INDEX IF NOT EXISTS clientes_estado_idx ON clientes (estado);
`

// EnsureSchema creates the clientes table when it does not exist yet.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createClientsTable); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
