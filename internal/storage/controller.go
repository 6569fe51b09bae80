package storage

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/san-kum/botcore/internal/async"
	"github.com/san-kum/botcore/internal/metrics"
)

type request struct {
	id     uuid.UUID
	task   Task
	future *async.Future[TaskResult]
}

type settled struct {
	req    *request
	result TaskResult
}

// Controller is the storage state machine.
type Controller struct {
	indexer    *Indexer
	feeder     *Feeder
	classifier Classifier
	logger     logr.Logger

	mu      sync.Mutex
	queue   []*request
	active  *request
	state   State
	slots   [SlotCount]SlotContent
	fedSlot int
}

func NewController(indexer *Indexer, feeder *Feeder, classifier Classifier, logger logr.Logger) *Controller {
	return &Controller{
		indexer:    indexer,
		feeder:     feeder,
		classifier: classifier,
		logger:     logger.WithName("storage"),
		state:      Resting,
	}
}

func (c *Controller) Indexer() *Indexer { return c.indexer }
func (c *Controller) Feeder() *Feeder   { return c.feeder }

// LoadGreen queues feeding a green piece. The future completes once that
// load cycle has finished or been abandoned.
func (c *Controller) LoadGreen() *async.Future[TaskResult] { return c.Enqueue(LoadGreen) }

func (c *Controller) LoadPurple() *async.Future[TaskResult] { return c.Enqueue(LoadPurple) }

func (c *Controller) BumpClockwise() *async.Future[TaskResult] { return c.Enqueue(ClockwiseBump) }

func (c *Controller) BumpCounterclockwise() *async.Future[TaskResult] {
	return c.Enqueue(CounterclockwiseBump)
}

// ReadyForCollection queues rotating an open slot to the front.
func (c *Controller) ReadyForCollection() *async.Future[TaskResult] {
	return c.Enqueue(ReadyForCollection)
}

func (c *Controller) Enqueue(t Task) *async.Future[TaskResult] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enqueueLocked(t)
}

// must hold c.mu
func (c *Controller) enqueueLocked(t Task) *async.Future[TaskResult] {
	req := &request{id: uuid.New(), task: t, future: async.NewFuture[TaskResult]()}
	c.queue = append(c.queue, req)
	c.logger.V(1).Info("Task queued", "task", t, "id", req.id, "pending", len(c.queue))
	return req.future
}

// ClearCommandQueue drops every pending task. The active task, if any, runs
// to completion.
func (c *Controller) ClearCommandQueue() {
	c.mu.Lock()
	dropped := c.queue
	c.queue = nil
	c.mu.Unlock()

	for _, req := range dropped {
		c.logger.V(1).Info("Task dropped", "task", req.task, "id", req.id)
		metrics.RecordStorageTask(req.task.String(), Dropped.String())
		req.future.Complete(Dropped)
	}
}

// Tick advances the feeder, the indexer and then the state machine by one
// cycle.
func (c *Controller) Tick() {
	c.feeder.Tick()
	c.indexer.Tick()

	c.mu.Lock()
	var done []settled
	switch c.state {
	case Resting:
		c.refreshFront()
		done = c.runTasks(done)
		if c.active == nil && len(c.queue) == 0 && c.front() != Open && !c.isFull() {
			c.enqueueLocked(ReadyForCollection)
		}
	case Bumping:
		if !c.indexer.IsBusy() {
			c.setState(Resting)
			done = c.finish(done, Done)
		}
	case ReadyingGreen, ReadyingPurple:
		if !c.indexer.IsBusy() {
			c.triggerFeed()
		}
	case LoadingGreen, LoadingPurple:
		if c.feeder.State() == FeederResting {
			c.slots[c.fedSlot] = Open
			c.setState(Resting)
			done = c.finish(done, Fed)
		}
	}
	counts := c.countsLocked()
	c.mu.Unlock()

	metrics.RecordStorageSlots(counts)
	for _, s := range done {
		metrics.RecordStorageTask(s.req.task.String(), s.result.String())
		s.req.future.Complete(s.result)
	}
}

// refreshFront attributes the classifier reading to the front slot, but only
// while the indexer is still and aligned. must hold c.mu
func (c *Controller) refreshFront() {
	if c.indexer.IsBusy() || c.indexer.CurrentIndex() != c.indexer.TargetIndex() {
		return
	}
	switch c.classifier.Classify() {
	case ColorGreen:
		c.setFront(Green)
	case ColorPurple:
		c.setFront(Purple)
	case ColorOpen:
		c.setFront(Open)
	}
}

// runTasks activates queued tasks until one needs the hardware. Tasks that
// resolve without motion complete and the next one is considered in the
// same tick. must hold c.mu
func (c *Controller) runTasks(done []settled) []settled {
	for c.state == Resting {
		if c.active == nil {
			if len(c.queue) == 0 {
				return done
			}
			c.active = c.queue[0]
			c.queue[0] = nil
			c.queue = c.queue[1:]
			c.logger.V(1).Info("Task started", "task", c.active.task, "id", c.active.id)
		}
		result, finished := c.resolve(c.active.task)
		if !finished {
			return done
		}
		done = c.finish(done, result)
	}
	return done
}

// resolve issues the commands for t. It reports finished when no motion was
// needed. must hold c.mu
func (c *Controller) resolve(t Task) (TaskResult, bool) {
	switch t {
	case LoadGreen, LoadPurple:
		want, _ := t.content()
		switch {
		case c.left() == want:
			c.triggerFeed()
		case c.right() == want:
			c.indexer.AdvanceClockwise(1)
			c.setState(readying(want))
		case c.front() == want:
			c.indexer.AdvanceCounterclockwise(1)
			c.setState(readying(want))
		default:
			c.logger.V(1).Info("Nothing to load", "want", want)
			return Abandoned, true
		}
	case ReadyForCollection:
		switch {
		case c.isFull():
			return Abandoned, true
		case c.front() == Open:
			return Done, true
		case c.left() == Open:
			c.indexer.AdvanceClockwise(1)
			c.setState(Bumping)
		default:
			c.indexer.AdvanceCounterclockwise(1)
			c.setState(Bumping)
		}
	case ClockwiseBump:
		c.indexer.AdvanceClockwise(1)
		c.setState(Bumping)
	case CounterclockwiseBump:
		c.indexer.AdvanceCounterclockwise(1)
		c.setState(Bumping)
	}
	return 0, false
}

// triggerFeed fires the feeder at the left slot and remembers which physical
// slot it emptied. must hold c.mu
func (c *Controller) triggerFeed() {
	c.fedSlot = c.physical(1)
	c.feeder.Trigger()
	if c.slots[c.fedSlot] == Purple {
		c.setState(LoadingPurple)
	} else {
		c.setState(LoadingGreen)
	}
}

// must hold c.mu
func (c *Controller) finish(done []settled, result TaskResult) []settled {
	if c.active == nil {
		return done
	}
	c.logger.V(1).Info("Task finished", "task", c.active.task, "id", c.active.id, "result", result)
	done = append(done, settled{req: c.active, result: result})
	c.active = nil
	return done
}

func readying(want SlotContent) State {
	if want == Purple {
		return ReadyingPurple
	}
	return ReadyingGreen
}

// must hold c.mu
func (c *Controller) setState(s State) {
	if s != c.state {
		c.logger.V(2).Info("State change", "from", c.state, "to", s)
	}
	c.state = s
}

// physical maps a logical offset from the front to a physical slot.
func (c *Controller) physical(offset int) int {
	return (c.indexer.NormalizedIndex() + offset) % SlotCount
}

func (c *Controller) front() SlotContent { return c.slots[c.physical(0)] }
func (c *Controller) left() SlotContent  { return c.slots[c.physical(1)] }
func (c *Controller) right() SlotContent { return c.slots[c.physical(2)] }

func (c *Controller) setFront(s SlotContent) { c.slots[c.physical(0)] = s }

func (c *Controller) isFull() bool {
	for _, s := range c.slots {
		if s == Open {
			return false
		}
	}
	return true
}

func (c *Controller) count(want SlotContent) int {
	n := 0
	for _, s := range c.slots {
		if s == want {
			n++
		}
	}
	return n
}

func (c *Controller) countsLocked() map[string]int {
	return map[string]int{
		Open.String():   c.count(Open),
		Green.String():  c.count(Green),
		Purple.String(): c.count(Purple),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Front() SlotContent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.front()
}

func (c *Controller) Left() SlotContent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left()
}

func (c *Controller) Right() SlotContent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right()
}

// Slots returns the physical slot array.
func (c *Controller) Slots() [SlotCount]SlotContent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots
}

// SetSlots overwrites the physical slot array, for preloading at startup.
func (c *Controller) SetSlots(slots [SlotCount]SlotContent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = slots
}

func (c *Controller) HasGreen() bool  { return c.Count(Green) > 0 }
func (c *Controller) HasPurple() bool { return c.Count(Purple) > 0 }

func (c *Controller) IsFull() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isFull()
}

func (c *Controller) Count(want SlotContent) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count(want)
}

// Pending returns the queued tasks in order, not including the active one.
func (c *Controller) Pending() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks := make([]Task, len(c.queue))
	for i, r := range c.queue {
		tasks[i] = r.task
	}
	return tasks
}

// Active returns the task being carried out, if any.
func (c *Controller) Active() (Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return 0, false
	}
	return c.active.task, true
}
