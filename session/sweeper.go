package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartSweeper schedules SweepOnce on a cron schedule ("@every 12h" by
// default). The caller stops the returned scheduler on shutdown.
func StartSweeper(m *Manager, schedule string, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		m.SweepOnce(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	log.Info("Session sweeper scheduled", zap.String("schedule", schedule))
	return c, nil
}
