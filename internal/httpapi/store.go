package httpapi

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"heimwahl/internal/bus"
)

// Store holds external dependencies required by the API layer. Bus may be
// nil; events are then dropped.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	Bus *bus.Bus
}
