package db

import (
	"context"
	"database/sql"

	"github.com/robodoc-one/gateway/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
}
