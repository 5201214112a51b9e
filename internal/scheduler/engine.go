// Package scheduler delivers reminder events on a channel when they come due.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskline/internal/logging"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrMissingReminderID  = errors.New("scheduler: reminder id is required")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

type ReminderEvent struct {
	ReminderID string
	TaskID     string
	Title      string
	TriggerAt  time.Time
}

type queueItem struct {
	event ReminderEvent
	seq   uint64
	index int
}

// reminderQueue is a min-heap on trigger time; equal times keep scheduling
// order. byID tracks each reminder's heap position.
type reminderQueue struct {
	items []*queueItem
	byID  map[string]*queueItem
}

func (q *reminderQueue) Len() int { return len(q.items) }

func (q *reminderQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.event.TriggerAt.Equal(b.event.TriggerAt) {
		return a.seq < b.seq
	}
	return a.event.TriggerAt.Before(b.event.TriggerAt)
}

func (q *reminderQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *reminderQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(q.items)
	q.items = append(q.items, item)
	q.byID[item.event.ReminderID] = item
}

func (q *reminderQueue) Pop() any {
	n := len(q.items)
	item := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	delete(q.byID, item.event.ReminderID)
	item.index = -1
	return item
}

type Option func(*Engine)

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithNow replaces the wall clock used to decide which events are due.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

type Engine struct {
	mu      sync.Mutex
	queue   reminderQueue
	seq     uint64
	out     chan ReminderEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64

	now    func() time.Time
	logger *log.Logger
}

func NewEngine(bufferSize int, opts ...Option) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	e := &Engine{
		queue:  reminderQueue{byID: make(map[string]*queueItem)},
		out:    make(chan ReminderEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// C delivers due events. It is closed once the engine stops.
func (e *Engine) C() <-chan ReminderEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	go e.loop()
}

// Stop ends the loop and closes C. Events still queued are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	if !e.started {
		e.stopped = true
		close(e.out)
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule queues ev. Scheduling a reminder id that is already queued
// replaces the earlier event.
func (e *Engine) Schedule(ev ReminderEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	if ev.ReminderID == "" {
		return ErrMissingReminderID
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.seq++
	if existing, ok := e.queue.byID[ev.ReminderID]; ok {
		existing.event = ev
		existing.seq = e.seq
		heap.Fix(&e.queue, existing.index)
	} else {
		heap.Push(&e.queue, &queueItem{event: ev, seq: e.seq})
	}
	e.signalWakeup()
	return nil
}

// Cancel drops the queued event of one reminder.
func (e *Engine) Cancel(reminderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.queue.byID[reminderID]
	if !ok {
		return false
	}
	heap.Remove(&e.queue, item.index)
	e.signalWakeup()
	return true
}

// CancelTask removes every queued event that belongs to taskID and reports
// how many were removed.
func (e *Engine) CancelTask(taskID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var doomed []*queueItem
	for _, item := range e.queue.items {
		if item.event.TaskID == taskID {
			doomed = append(doomed, item)
		}
	}
	for _, item := range doomed {
		heap.Remove(&e.queue, item.index)
	}
	if len(doomed) > 0 {
		e.signalWakeup()
	}
	return len(doomed)
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

// Next reports the earliest queued event without removing it.
func (e *Engine) Next() (ReminderEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue.Len() == 0 {
		return ReminderEvent{}, false
	}
	return e.queue.items[0].event, true
}

// Dropped counts due events discarded because the channel was full.
func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	defer func() { stopTimer(timer) }()
	for {
		next, ok := e.Next()
		if !ok {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.TriggerAt.Sub(e.now())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			e.deliver(e.popDue(e.now()))
		case <-e.wakeup:
		case <-e.stopCh:
			return
		}
	}
}

func (e *Engine) deliver(due []ReminderEvent) {
	for _, ev := range due {
		select {
		case e.out <- ev:
		default:
			atomic.AddUint64(&e.dropped, 1)
			e.logger.Warn("reminder dropped, consumer is behind", "reminder", ev.ReminderID, "task", ev.TaskID)
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) popDue(now time.Time) []ReminderEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []ReminderEvent
	for e.queue.Len() > 0 && !e.queue.items[0].event.TriggerAt.After(now) {
		item := heap.Pop(&e.queue).(*queueItem)
		out = append(out, item.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
