package internal

import (
	"math"
	"slices"
)

// Job is the unit of work handed to the scheduler. Its behavior variants are
// flags, never job subtypes.
type Job struct {
	// ordering key, 0 when the job has no owning instance
	ID    int
	Flags JobFlags

	// owning instance, used for error attribution
	Instance *Instance

	fn func()
}

func NewJob(fn func()) *Job {
	return &Job{fn: fn}
}

// Run executes the job.
func (j *Job) Run() {
	if j.fn != nil {
		j.fn()
	}
}

// sortID orders jobs: explicit ids ascending, pre jobs without an id first, the rest last.
func (j *Job) sortID() int {
	if j.ID > 0 {
		return j.ID
	}

	if j.Flags.Has(JobPre) {
		return -1
	}

	return math.MaxInt
}

// insertionIndex finds where a job with the given id goes so the part of the
// queue that has not run yet stays sorted. Pre jobs go before other jobs of the same id.
func (s *Scheduler) insertionIndex(id int) int {
	start := s.flushIndex + 1
	end := len(s.queue)

	for start < end {
		middle := int(uint(start+end) >> 1)
		middleJob := s.queue[middle]
		middleID := middleJob.sortID()

		if middleID < id || (middleID == id && middleJob.Flags.Has(JobPre)) {
			start = middle + 1
		} else {
			end = middle
		}
	}

	return start
}

// QueueJob adds a job to the main queue. A job already queued is not added twice.
func (s *Scheduler) QueueJob(job *Job) {
	if job.Flags.Has(JobQueued) || job.Flags.Has(JobDisposed) {
		return
	}

	id := job.sortID()
	n := len(s.queue)

	if n == 0 || (!job.Flags.Has(JobPre) && id >= s.queue[n-1].sortID()) {
		s.queue = append(s.queue, job)
	} else {
		s.queue = slices.Insert(s.queue, s.insertionIndex(id), job)
	}

	job.Flags.Set(JobQueued)
	s.requestFlush()
}

// QueuePostFlushCb adds a job to run once the main queue is drained.
func (s *Scheduler) QueuePostFlushCb(job *Job) {
	if job.Flags.Has(JobQueued) || job.Flags.Has(JobDisposed) {
		return
	}

	s.pendingPost = append(s.pendingPost, job)
	job.Flags.Set(JobQueued)
	s.requestFlush()
}

type TickQueue struct {
	callbacks []func()
}

func NewTickQueue() *TickQueue {
	return &TickQueue{
		callbacks: make([]func(), 0),
	}
}

func (q *TickQueue) Enqueue(fn func()) {
	q.callbacks = append(q.callbacks, fn)
}

func (q *TickQueue) Len() int {
	return len(q.callbacks)
}

// Run calls every queued callback, callbacks queued meanwhile wait for the next run.
func (q *TickQueue) Run(call func(fn func())) {
	callbacks := q.callbacks
	q.callbacks = make([]func(), 0)

	for _, cb := range callbacks {
		call(cb)
	}
}
