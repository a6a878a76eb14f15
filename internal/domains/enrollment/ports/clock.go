package ports

import (
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// Clock is the only source of time for command guards and query-time flags.
type Clock interface {
	// Now returns the current instant expressed in Location.
	Now() time.Time
	Today() domain.Date
	Location() *time.Location
}
