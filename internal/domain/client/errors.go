package client

import "errors"

var (
	ErrNotFound      = errors.New("client not found")
	ErrEmailConflict = errors.New("email already exists")
)
