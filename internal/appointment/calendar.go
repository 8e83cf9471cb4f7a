package appointment

import (
	"context"

	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

// Calendar exposes the repository as the read-only booking view the
// scheduling engine works from.
type Calendar struct {
	repo Repository
}

func NewCalendar(repo Repository) *Calendar {
	return &Calendar{repo: repo}
}

func (c *Calendar) ListOverlapping(ctx context.Context, rng schedule.Interval) ([]schedule.Interval, error) {
	appts, err := c.repo.ListOverlapping(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	out := make([]schedule.Interval, 0, len(appts))
	for _, a := range appts {
		out = append(out, a.Interval())
	}
	return out, nil
}
