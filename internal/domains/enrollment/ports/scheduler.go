package ports

import (
	"context"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// Scheduler delivers follow-up commands in the future, at least once.
type Scheduler interface {
	ScheduleTrainingReminder(ctx context.Context, at time.Time, cmd domain.SendTrainingReminder) error
}
