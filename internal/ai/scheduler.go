package ai

import "time"

// Scheduler drives the sub-managers of one controller. It holds a list of
// (next-due-time, interval, handler) entries and is stepped once per
// simulation frame; handlers run synchronously inside Step, in registration
// order, so a handler can never re-enter itself or interleave with another.
type Scheduler struct {
	tasks []*schedulerTask
}

type schedulerTask struct {
	name     string
	interval time.Duration
	nextDue  time.Duration
	fn       func(now time.Duration)
}

// Add registers a periodic handler. The first invocation happens on the
// first Step at or after the interval elapses.
func (s *Scheduler) Add(name string, interval time.Duration, fn func(now time.Duration)) {
	s.tasks = append(s.tasks, &schedulerTask{
		name:     name,
		interval: interval,
		nextDue:  interval,
		fn:       fn,
	})
}

// Step runs every handler whose due time has arrived and returns how many
// ran. A handler that falls behind runs once and is rescheduled relative to
// now rather than replaying missed intervals.
func (s *Scheduler) Step(now time.Duration) int {
	ran := 0
	for _, t := range s.tasks {
		if now < t.nextDue {
			continue
		}
		t.fn(now)
		t.nextDue = now + t.interval
		ran++
	}
	return ran
}

// Stop removes all registered handlers. Subsequent Steps are no-ops, which
// makes controller teardown deterministic: once Stop returns, no handler
// can fire again.
func (s *Scheduler) Stop() {
	s.tasks = nil
}
