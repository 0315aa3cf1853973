package internal

import (
	"cmp"
	"slices"
	"time"
)

type Scheduler struct {
	rt *Runtime

	// main queue: pre jobs and instance updates sorted by id
	queue      []*Job
	flushIndex int

	pendingPost []*Job
	activePost  []*Job
	postIndex   int

	ticks *TickQueue

	// a flush was requested and has not run yet
	scheduled bool
	running   bool

	recursionLimit int
}

func NewScheduler(r *Runtime) *Scheduler {
	return &Scheduler{
		rt:             r,
		flushIndex:     -1,
		ticks:          NewTickQueue(),
		recursionLimit: r.config.RecursionLimit,
	}
}

func (s *Scheduler) requestFlush() {
	s.scheduled = true
}

// Pending reports whether jobs or tick callbacks are waiting for a flush.
func (s *Scheduler) Pending() bool {
	return s.scheduled || len(s.queue) > 0 || len(s.pendingPost) > 0 || s.ticks.Len() > 0
}

func (s *Scheduler) Flushing() bool {
	return s.running
}

// NextTick runs fn once the next flush completes.
func (s *Scheduler) NextTick(fn func()) {
	s.ticks.Enqueue(fn)
	s.requestFlush()
}

// Flush runs the main queue then the post queue, repeating while jobs keep being
// queued, then runs the tick callbacks queued so far and drains the jobs they queued.
// Ticks queued by tick callbacks wait for the next Flush. Calling it from within a
// flush is a no-op, the running flush picks up any job queued meanwhile.
func (s *Scheduler) Flush() {
	if s.running || !s.Pending() {
		return
	}

	s.running = true
	defer func() { s.running = false }()

	start := time.Now()
	s.rt.logger.Debug("flush started")

	ranTicks := false
	for {
		s.scheduled = false

		// job run counts for the recursion guard
		seen := make(map[*Job]int)

		for len(s.queue) > 0 || len(s.pendingPost) > 0 {
			s.flushJobs(seen)
			s.flushPostFlushCbs(seen)
		}

		if ranTicks || s.ticks.Len() == 0 {
			break
		}
		ranTicks = true

		s.ticks.Run(func(fn func()) {
			s.rt.errors.Call(fn, nil, ErrorNextTick)
		})
	}

	s.rt.metrics.recordFlush(time.Since(start))
	s.rt.logger.Debug("flush finished", "duration", time.Since(start))
}

func (s *Scheduler) flushJobs(seen map[*Job]int) {
	for s.flushIndex = 0; s.flushIndex < len(s.queue); s.flushIndex++ {
		job := s.queue[s.flushIndex]
		if job.Flags.Has(JobDisposed) || s.checkRecursiveUpdates(seen, job) {
			job.Flags.Clear(JobQueued)
			continue
		}

		code := ErrorScheduler
		phase := "update"
		if job.Instance != nil {
			code = ErrorInstanceUpdate
		}
		if job.Flags.Has(JobPre) {
			phase = "pre"
		}

		s.runJob(job, code)
		s.rt.metrics.recordJob(phase)
	}

	s.flushIndex = -1
	clear(s.queue)
	s.queue = s.queue[:0]
}

func (s *Scheduler) flushPostFlushCbs(seen map[*Job]int) {
	if len(s.pendingPost) == 0 {
		return
	}

	// already deduplicated by the queued flag
	deduped := slices.Clone(s.pendingPost)
	slices.SortStableFunc(deduped, func(a, b *Job) int {
		return cmp.Compare(a.sortID(), b.sortID())
	})
	s.pendingPost = s.pendingPost[:0]

	// nested call while post jobs are running
	if s.activePost != nil {
		s.activePost = append(s.activePost, deduped...)
		return
	}

	s.activePost = deduped
	for s.postIndex = 0; s.postIndex < len(s.activePost); s.postIndex++ {
		job := s.activePost[s.postIndex]
		if job.Flags.Has(JobDisposed) || s.checkRecursiveUpdates(seen, job) {
			job.Flags.Clear(JobQueued)
			continue
		}

		s.runJob(job, ErrorScheduler)
		s.rt.metrics.recordJob("post")
	}

	s.activePost = nil
	s.postIndex = 0
}

// FlushPreFlushCbs runs the queued pre jobs of instance right away,
// or every queued pre job when instance is nil.
func (s *Scheduler) FlushPreFlushCbs(instance *Instance) {
	seen := make(map[*Job]int)

	for i := s.flushIndex + 1; i < len(s.queue); i++ {
		job := s.queue[i]
		if !job.Flags.Has(JobPre) {
			continue
		}
		if instance != nil && job.ID != instance.UID {
			continue
		}
		if s.checkRecursiveUpdates(seen, job) {
			continue
		}

		s.queue = slices.Delete(s.queue, i, i+1)
		i--

		if job.Flags.Has(JobDisposed) {
			job.Flags.Clear(JobQueued)
			continue
		}

		s.runJob(job, ErrorScheduler)
		s.rt.metrics.recordJob("pre")
	}
}

// runJob executes a job through the error handler. Jobs allowed to recurse are
// unmarked before running so they can queue themselves again.
func (s *Scheduler) runJob(job *Job, code ErrorCode) {
	if job.Flags.Has(JobAllowRecurse) {
		job.Flags.Clear(JobQueued)
	}

	s.rt.errors.Call(job.Run, job.Instance, code)

	if !job.Flags.Has(JobAllowRecurse) {
		job.Flags.Clear(JobQueued)
	}
}

// checkRecursiveUpdates counts runs of job within one flush and reports
// ErrRecursiveUpdates once the limit is exceeded. It returns true when the job must be skipped.
func (s *Scheduler) checkRecursiveUpdates(seen map[*Job]int, job *Job) bool {
	count := seen[job] + 1
	seen[job] = count

	if count <= s.recursionLimit {
		return false
	}

	if count == s.recursionLimit+1 {
		s.rt.errors.Handle(ErrRecursiveUpdates, job.Instance, ErrorScheduler)
	}

	return true
}
