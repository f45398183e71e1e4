package client

const (
	clientColumns = `id, nombre, email, telefono, estado, fecha_creacion, fecha_actualizacion`

	SelectClients = `
		SELECT ` + clientColumns + `
		FROM clientes
		WHERE ($1 = '' OR estado = $1)
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	CountClients = `
		SELECT count(*)
		FROM clientes
		WHERE ($1 = '' OR estado = $1)
	`
	SelectClientByID = `
		SELECT ` + clientColumns + `
		FROM clientes
		WHERE id = $1
	`
	SelectClientByEmail = `
		SELECT ` + clientColumns + `
		FROM clientes
		WHERE email = $1
	`
	InsertClient = `
		INSERT INTO clientes (nombre, email, telefono, estado)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + clientColumns
	// Columns whose parameter is NULL keep their current value; telefono
	// is driven by an explicit flag so it can be cleared.
	UpdateClientByID = `
		UPDATE clientes
		SET nombre = COALESCE($1, nombre),
		    email = COALESCE($2, email),
		    telefono = CASE WHEN $3::boolean THEN $4 ELSE telefono END,
		    estado = COALESCE($5, estado),
		    fecha_actualizacion = GREATEST(now(), fecha_creacion)
		WHERE id = $6
		RETURNING ` + clientColumns
	DeleteClientByID = `DELETE FROM clientes WHERE id = $1`
)
