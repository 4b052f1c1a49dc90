package ai

import (
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// TaskStatus is the lifecycle state of a construction task.
type TaskStatus int

const (
	TaskQueued TaskStatus = iota
	TaskInProgress
)

// BuildTask is one pending construction job.
type BuildTask struct {
	Building string
	Priority int // 1 (lowest) to 4 (highest)
	Site     *rts.Position
	Workers  []rts.EntityID
	Status   TaskStatus

	seq int // insertion order, breaks priority ties
}

// BuildQueue is the priority-ordered list of pending construction tasks.
// Ordering is by descending priority with ties broken by insertion order.
type BuildQueue struct {
	tasks   []*BuildTask
	nextSeq int
}

// Push inserts a task at its priority position.
func (q *BuildQueue) Push(t *BuildTask) {
	t.seq = q.nextSeq
	q.nextSeq++

	pos := len(q.tasks)
	for i, existing := range q.tasks {
		if t.Priority > existing.Priority {
			pos = i
			break
		}
	}
	q.tasks = append(q.tasks, nil)
	copy(q.tasks[pos+1:], q.tasks[pos:])
	q.tasks[pos] = t
}

// Peek returns the head task without removing it, or nil when empty.
func (q *BuildQueue) Peek() *BuildTask {
	if len(q.tasks) == 0 {
		return nil
	}
	return q.tasks[0]
}

// Pop removes and returns the head task, or nil when empty.
func (q *BuildQueue) Pop() *BuildTask {
	if len(q.tasks) == 0 {
		return nil
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t
}

// Rotate moves the head task behind the last task of equal priority. Used
// only when the strict head-retry policy is disabled.
func (q *BuildQueue) Rotate() {
	if len(q.tasks) < 2 {
		return
	}
	head := q.tasks[0]
	pos := 0
	for i := 1; i < len(q.tasks); i++ {
		if q.tasks[i].Priority == head.Priority {
			pos = i
		}
	}
	if pos == 0 {
		return
	}
	copy(q.tasks, q.tasks[1:pos+1])
	q.tasks[pos] = head
}

// Len returns the number of queued tasks.
func (q *BuildQueue) Len() int { return len(q.tasks) }

// Contains reports whether any task references the building type.
func (q *BuildQueue) Contains(building string) bool {
	for _, t := range q.tasks {
		if t.Building == building {
			return true
		}
	}
	return false
}

// QueueBuilding validates the building kind against the catalog and pushes
// a task. Unknown kinds are rejected so the queue never carries a task the
// command layer cannot execute.
func (c *Controller) QueueBuilding(building string, priority int, site *rts.Position) bool {
	if _, ok := c.world.Catalog().Building(building); !ok {
		c.log.Warn().Str("building", building).Msg("Rejected unknown building kind")
		return false
	}
	if priority < 1 {
		priority = 1
	} else if priority > 4 {
		priority = 4
	}
	c.ctx.BuildQueue.Push(&BuildTask{Building: building, Priority: priority, Site: site})
	return true
}

// queueBuildingOnce queues a building only when no task for it is pending
// and the participant does not already own one.
func (c *Controller) queueBuildingOnce(building string, priority int) bool {
	if c.ctx.BuildQueue.Contains(building) {
		return false
	}
	if len(c.world.EntitiesOfType(c.ctx.Player, building)) > 0 {
		return false
	}
	return c.QueueBuilding(building, priority, nil)
}

// tickConstruction progresses the build queue. Only the head task is
// processed per tick: it must pass the affordability check, resolve a build
// site, and find idle workers, or it stays queued and is retried next tick.
func (c *Controller) tickConstruction(now time.Duration) {
	ctx := c.ctx
	c.ensureHousing()

	task := ctx.BuildQueue.Peek()
	if task == nil {
		return
	}

	def, ok := c.world.Catalog().Building(task.Building)
	if !ok {
		ctx.BuildQueue.Pop()
		c.log.Warn().Str("building", task.Building).Msg("Dropped unknown building task")
		return
	}

	if !c.world.CanAfford(ctx.Player, def.Cost) {
		c.deferHead("unaffordable")
		return
	}

	site := c.resolveSite(task)
	if site == nil {
		c.deferHead("no site")
		return
	}

	workers := c.idleWorkers(ctx.Params.MaxBuildWorkers)
	if len(workers) == 0 {
		c.deferHead("no idle workers")
		return
	}

	ctx.BuildQueue.Pop()
	task.Status = TaskInProgress
	task.Workers = workers
	task.Site = site

	c.sink.Submit(ctx.Player, rts.BuildCommand{
		Units:    workers,
		Building: task.Building,
		Site:     *site,
	})
	c.log.Debug().
		Str("building", task.Building).
		Int("workers", len(workers)).
		Float64("x", site.X).
		Float64("y", site.Y).
		Msg("Construction started")
}

// deferHead leaves the head task queued for the next tick. Under the strict
// policy the head is retried in place; otherwise it rotates behind its
// priority band so siblings get a chance.
func (c *Controller) deferHead(reason string) {
	if !c.ctx.Params.StrictQueueHead {
		c.ctx.BuildQueue.Rotate()
	}
	c.log.Trace().Str("reason", reason).Msg("Construction deferred")
}

// resolveSite returns a build site for the task: its fixed location if set,
// else the next suitable precomputed candidate, else a fresh outward ring
// scan. Returns nil when nothing suitable exists this tick.
func (c *Controller) resolveSite(task *BuildTask) *rts.Position {
	ctx := c.ctx

	if task.Site != nil {
		if c.siteSuitable(*task.Site) {
			return task.Site
		}
		// Fixed location got obstructed; fall through to search.
		task.Site = nil
	}

	for len(ctx.CandidateSites) > 0 {
		p := ctx.CandidateSites[0]
		ctx.CandidateSites = ctx.CandidateSites[1:]
		if c.siteSuitable(p) {
			return &p
		}
	}

	// Candidates exhausted: rescan outward from the base, starting past the
	// original rings.
	start := ctx.Params.RingStep * float64(ctx.Params.RingCount)
	for ring := 1; ring <= ctx.Params.RingCount; ring++ {
		radius := start + float64(ring)*ctx.Params.RingStep
		for _, p := range ringPoints(ctx.BasePos, radius, ctx.Params.RingPoints) {
			if c.siteSuitable(p) {
				return &p
			}
		}
	}
	return nil
}

// idleWorkers returns up to max idle civilian workers.
func (c *Controller) idleWorkers(max int) []rts.EntityID {
	var out []rts.EntityID
	for _, e := range c.world.EntitiesOf(c.ctx.Player, rts.KindUnit) {
		if e.Military || !e.Idle {
			continue
		}
		out = append(out, e.ID)
		if len(out) >= max {
			break
		}
	}
	return out
}

// ensureHousing queues a house when population headroom runs low.
func (c *Controller) ensureHousing() {
	cur, max := c.world.Population(c.ctx.Player)
	if max-cur > 3 {
		return
	}
	if c.ctx.BuildQueue.Contains("house") {
		return
	}
	c.QueueBuilding("house", 3, nil)
}
