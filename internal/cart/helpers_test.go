package cart

import (
	"testing"

	"github.com/apexfit/storefront/internal/schedule"
)

func newTestScheduler(t *testing.T) *schedule.Scheduler {
	t.Helper()
	s := schedule.NewScheduler()
	t.Cleanup(s.StopAll)
	return s
}
