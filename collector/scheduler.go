package collector

import (
	"container/heap"
	"sync"
	"time"

	"github.com/vaultrand/prng/config"
	"github.com/vaultrand/prng/log"
)

var slowdownPeriodSecs config.IntOption

func init() {
	err := config.Register(&config.Option{
		Name:            "Collector Slowdown Period",
		Key:             "collector/slowdown_period_seconds",
		Description:     "Wall-clock time since the last speed reset after which collection delays are scaled up. 0 disables the adaptive slowdown.",
		OptType:         config.OptTypeInt,
		DefaultValue:    int64(300),
		ValidationRegex: "^[0-9]{1,6}$",
	})
	if err != nil {
		panic(err)
	}
	slowdownPeriodSecs = config.GetAsInt("collector/slowdown_period_seconds", 300)
}

type runState uint8

// Collector lifecycle states.
const (
	stateRegistered runState = iota
	stateRunning
	stateSuspended
	stateStopped
)

// registration associates a source with its scheduled future run.
type registration struct {
	source    Source
	delay     time.Duration
	state     runState
	nextRun   time.Time
	heapIndex int // -1 while not armed
}

// runQueue is a min-heap of registrations ordered by next run time.
type runQueue []*registration

func (q runQueue) Len() int            { return len(q) }
func (q runQueue) Less(i, j int) bool  { return q[i].nextRun.Before(q[j].nextRun) }
func (q runQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].heapIndex = i
	q[j].heapIndex = j
}

func (q *runQueue) Push(x interface{}) {
	reg := x.(*registration)
	reg.heapIndex = len(*q)
	*q = append(*q, reg)
}

func (q *runQueue) Pop() interface{} {
	old := *q
	n := len(old)
	reg := old[n-1]
	old[n-1] = nil
	reg.heapIndex = -1
	*q = old[:n-1]
	return reg
}

// Scheduler drives all entropy collectors on one shared single-threaded
// timer. Collector runs execute sequentially on this one worker, so a
// collector never overlaps with itself, while different collectors may run
// back to back. Registry operations are serialized by one mutex, separate
// from run execution.
type Scheduler struct {
	lock          sync.Mutex
	sink          Sink
	registrations map[Source]*registration
	queue         runQueue
	suspended     bool
	baseline      time.Time

	wake     chan struct{}
	shutdown chan struct{}
	stopped  chan struct{}
}

// NewScheduler creates a scheduler feeding into the given sink and starts
// its timer worker.
func NewScheduler(sink Sink) *Scheduler {
	s := &Scheduler{
		sink:          sink,
		registrations: make(map[Source]*registration),
		baseline:      time.Now(),
		wake:          make(chan struct{}, 1),
		shutdown:      make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go s.run()
	return s
}

// Initialise registers a source and starts its collection schedule. A
// source whose operational check fails is never scheduled. While the
// scheduler is globally suspended the registration is retained and armed on
// Restart.
func (s *Scheduler) Initialise(src Source, delay time.Duration) {
	if !src.IsOperational() {
		log.Warningf("collector: %s is not operational, not scheduling", src.Name())
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	// a re-registered source replaces its old schedule
	if old, ok := s.registrations[src]; ok {
		old.state = stateStopped
		if old.heapIndex >= 0 {
			heap.Remove(&s.queue, old.heapIndex)
		}
	}

	reg := &registration{
		source:    src,
		delay:     delay,
		state:     stateRegistered,
		heapIndex: -1,
	}
	s.registrations[src] = reg

	if !s.suspended {
		s.armLocked(reg)
		s.wakeUp()
	}
	log.Infof("collector: initialised %s with delay %s", src.Name(), delay)
}

// Suspend cancels all pending collector runs without deregistering the
// collectors. After Suspend returns, no collector task is left armed.
func (s *Scheduler) Suspend() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.suspended {
		return
	}
	s.suspended = true
	for _, reg := range s.registrations {
		if reg.state == stateRunning {
			reg.state = stateSuspended
			if reg.heapIndex >= 0 {
				heap.Remove(&s.queue, reg.heapIndex)
			}
		}
	}
	s.wakeUp()
}

// Restart re-arms every still-registered collector after a Suspend.
func (s *Scheduler) Restart() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.suspended {
		return
	}
	s.suspended = false
	for _, reg := range s.registrations {
		if reg.state == stateSuspended || reg.state == stateRegistered {
			s.armLocked(reg)
		}
	}
	s.wakeUp()
}

// Stop cancels a collector and removes it from the registry permanently.
// The collector will never run again.
func (s *Scheduler) Stop(src Source) {
	s.lock.Lock()
	defer s.lock.Unlock()

	reg, ok := s.registrations[src]
	if !ok {
		return
	}
	delete(s.registrations, src)
	reg.state = stateStopped
	if reg.heapIndex >= 0 {
		heap.Remove(&s.queue, reg.heapIndex)
	}
	s.wakeUp()
}

// SpeedReset resets the slowdown baseline, so collectors temporarily run at
// full rate again. Armed runs are rescheduled with their base delay.
func (s *Scheduler) SpeedReset() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.baseline = time.Now()
	for _, reg := range s.registrations {
		if reg.heapIndex >= 0 {
			reg.nextRun = s.baseline.Add(reg.delay)
			heap.Fix(&s.queue, reg.heapIndex)
		}
	}
	s.wakeUp()
}

// Shutdown stops the timer worker. The scheduler must not be used
// afterwards.
func (s *Scheduler) Shutdown() {
	s.Suspend()
	close(s.shutdown)
	<-s.stopped
}

func (s *Scheduler) wakeUp() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) armLocked(reg *registration) {
	reg.state = stateRunning
	reg.nextRun = time.Now().Add(s.scaledDelayLocked(reg.delay))
	heap.Push(&s.queue, reg)
}

// scaledDelayLocked applies the global adaptive slowdown: once the time
// since the last speed reset exceeds the configured period, delays are
// scaled by elapsed/period, capped at 2x.
func (s *Scheduler) scaledDelayLocked(delay time.Duration) time.Duration {
	scale := s.slowdownScaleLocked()
	if scale <= 1 {
		return delay
	}
	return time.Duration(float64(delay) * scale)
}

func (s *Scheduler) slowdownScaleLocked() float64 {
	period := time.Duration(slowdownPeriodSecs()) * time.Second
	if period <= 0 {
		return 1
	}
	elapsed := time.Since(s.baseline)
	if elapsed <= period {
		return 1
	}
	scale := float64(elapsed) / float64(period)
	if scale > 2 {
		scale = 2
	}
	return scale
}

// slowdownExceeded reports whether timer drift has grown a full period
// beyond the 2x cap, which calls for a suspend and restart cycle. The
// extra period keeps normalization from re-triggering on every dispatch.
func (s *Scheduler) slowdownExceeded() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	period := time.Duration(slowdownPeriodSecs()) * time.Second
	if period <= 0 {
		return false
	}
	return time.Since(s.baseline) > 3*period
}

// normalize runs a full suspend+restart cycle and moves the baseline so
// that rescheduled runs keep the maximum 2x slowdown instead of drifting
// further.
func (s *Scheduler) normalize() {
	log.Debugf("collector: slowdown exceeded 2x, normalizing timers")
	s.Suspend()

	s.lock.Lock()
	period := time.Duration(slowdownPeriodSecs()) * time.Second
	s.baseline = time.Now().Add(-2 * period)
	s.lock.Unlock()

	s.Restart()
}

// run is the shared timer worker.
func (s *Scheduler) run() {
	defer close(s.stopped)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.lock.Lock()
		armed := len(s.queue) > 0
		var wait time.Duration
		if armed {
			wait = time.Until(s.queue[0].nextRun)
		}
		s.lock.Unlock()

		if !armed {
			select {
			case <-s.wake:
				continue
			case <-s.shutdown:
				return
			}
		}

		if wait > 0 {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(wait)
			select {
			case <-timer.C:
			case <-s.wake:
				continue
			case <-s.shutdown:
				return
			}
		}

		s.dispatch()

		if s.slowdownExceeded() {
			s.normalize()
		}
	}
}

// dispatch runs every due collector once and reschedules it afterwards. A
// collector is only rescheduled after its run completed.
func (s *Scheduler) dispatch() {
	for {
		s.lock.Lock()
		if s.suspended || len(s.queue) == 0 || time.Now().Before(s.queue[0].nextRun) {
			s.lock.Unlock()
			return
		}
		reg := heap.Pop(&s.queue).(*registration)
		s.lock.Unlock()

		s.runOnce(reg)

		s.lock.Lock()
		// suspend or stop may have changed the state during the run
		if reg.state == stateRunning {
			reg.nextRun = time.Now().Add(s.scaledDelayLocked(reg.delay))
			heap.Push(&s.queue, reg)
		}
		s.lock.Unlock()
	}
}

// runOnce executes one collection run. A failing or panicking source is
// logged and stays on its schedule.
func (s *Scheduler) runOnce(reg *registration) {
	defer func() {
		if x := recover(); x != nil {
			log.Warningf("collector: %s panicked: %v", reg.source.Name(), x)
		}
	}()

	if es, ok := reg.source.(EventSource); ok {
		value, err := es.Collect()
		if err != nil {
			log.Warningf("collector: %s failed to collect: %s", reg.source.Name(), err)
		} else {
			s.sink.FeedEvent(value)
		}
	}

	if bs, ok := reg.source.(BlockSource); ok {
		block, err := bs.FetchBlock()
		if err != nil {
			log.Warningf("collector: %s failed to fetch block: %s", reg.source.Name(), err)
		} else if len(block) > 0 {
			s.sink.FeedBytes(block)
		}
	}
}
