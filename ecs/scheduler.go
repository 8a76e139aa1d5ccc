package ecs

import (
	"context"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	TickCount       int64         `json:"tick_count"`
	EntityCount     int           `json:"entity_count"`
	EntitiesRemoved int64         `json:"entities_removed"`
	CommandsApplied int64         `json:"commands_applied"`
	MinDuration     time.Duration `json:"min_duration"`
	MaxDuration     time.Duration `json:"max_duration"`
	AvgDuration     time.Duration `json:"avg_duration"`
	LastDuration    time.Duration `json:"last_duration"`
	TotalDuration   time.Duration `json:"total_duration"`
}

// Scheduler drives the update loop of an EntityList. Each tick runs every
// entity's controllers with an UpdateFrame as state, removes expired
// entities, then applies the commands queued during the tick.
type Scheduler struct {
	registry *Registry
	entities *EntityList

	tickCount       int64
	entitiesRemoved int64
	commandsApplied int64
	minDuration     time.Duration
	maxDuration     time.Duration
	totalDuration   time.Duration
	lastDuration    time.Duration
}

// NewScheduler creates a scheduler for the entities of registry.
func NewScheduler(registry *Registry, entities *EntityList) *Scheduler {
	return &Scheduler{
		registry:    registry,
		entities:    entities,
		minDuration: time.Duration(1<<63 - 1),
	}
}

// Entities returns the list the scheduler updates.
func (s *Scheduler) Entities() *EntityList {
	return s.entities
}

// Once runs a single tick with the given delta time.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(dt, s.tickCount, s.registry, s.entities)

	start := time.Now()
	s.entitiesRemoved += int64(s.entities.Update(frame))
	s.commandsApplied += int64(frame.Commands.Len())
	s.entitiesRemoved += int64(frame.Commands.Flush(s.entities))
	duration := time.Since(start)

	s.tickCount++
	s.lastDuration = duration
	s.totalDuration += duration
	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

// Draw draws every live entity with the given draw state.
func (s *Scheduler) Draw(state any) {
	s.entities.Draw(state)
}

// Run executes ticks repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about tick execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		TickCount:       s.tickCount,
		EntityCount:     s.entities.Len(),
		EntitiesRemoved: s.entitiesRemoved,
		CommandsApplied: s.commandsApplied,
		LastDuration:    s.lastDuration,
		TotalDuration:   s.totalDuration,
	}
	if s.tickCount > 0 {
		stats.MinDuration = s.minDuration
		stats.MaxDuration = s.maxDuration
		stats.AvgDuration = s.totalDuration / time.Duration(s.tickCount)
	}
	return stats
}
