package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StartAutosave saves s on the cron schedule (e.g. "@every 30s") until
// ctx ends. The returned cron is already running; Stop waits for a save in
// flight.
func StartAutosave(ctx context.Context, schedule string, s *Session) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		saveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.Save(saveCtx); err != nil {
			log.Printf("[AUTOSAVE] %s: %v", s.CanvasID(), err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("autosave schedule %q: %w", schedule, err)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
