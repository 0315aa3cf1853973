package internal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduler(t *testing.T) {
	t.Run("runs jobs by ascending id with pre jobs first", func(t *testing.T) {
		r := NewRuntime()
		log := []string{}

		job := func(name string, id int, flags JobFlags) *Job {
			j := NewJob(func() { log = append(log, name) })
			j.ID = id
			j.Flags = flags
			return j
		}

		r.scheduler.QueueJob(job("update 2", 2, 0))
		r.scheduler.QueueJob(job("pre 2", 2, JobPre))
		r.scheduler.QueueJob(job("update 1", 1, 0))
		r.scheduler.QueueJob(job("pre without id", 0, JobPre))
		r.scheduler.QueueJob(job("without id", 0, 0))

		assert.True(t, r.scheduler.Pending())
		r.Flush()

		assert.Equal(t, []string{
			"pre without id",
			"update 1",
			"pre 2",
			"update 2",
			"without id",
		}, log)
		assert.False(t, r.scheduler.Pending())
	})

	t.Run("queued jobs are not queued twice", func(t *testing.T) {
		r := NewRuntime()
		runs := 0

		job := NewJob(func() { runs++ })
		r.scheduler.QueueJob(job)
		r.scheduler.QueueJob(job)
		r.scheduler.QueuePostFlushCb(job)
		r.Flush()

		assert.Equal(t, 1, runs)
		assert.False(t, job.Flags.Has(JobQueued))
	})

	t.Run("post jobs run after the main queue then next tick", func(t *testing.T) {
		r := NewRuntime()
		log := []string{}

		post := NewJob(func() {
			log = append(log, "post")
			r.scheduler.QueueJob(NewJob(func() { log = append(log, "main from post") }))
		})

		r.NextTick(func() { log = append(log, "tick") })
		r.scheduler.QueueJob(NewJob(func() {
			log = append(log, "main")
			r.scheduler.QueuePostFlushCb(post)
		}))
		r.Flush()

		assert.Equal(t, []string{"main", "post", "main from post", "tick"}, log)
	})

	t.Run("ticks queued by a tick wait for the next flush", func(t *testing.T) {
		r := NewRuntime()
		log := []string{}
		runs := 0

		var tick func()
		tick = func() {
			runs++
			log = append(log, fmt.Sprintf("tick %d", runs))
			r.scheduler.QueueJob(NewJob(func() { log = append(log, fmt.Sprintf("job from tick %d", runs)) }))
			r.NextTick(tick)
		}
		r.NextTick(tick)

		r.Flush()
		assert.Equal(t, []string{"tick 1", "job from tick 1"}, log)
		assert.True(t, r.scheduler.Pending())

		r.Flush()
		assert.Equal(t, 2, runs)
		assert.True(t, r.scheduler.Pending())
	})

	t.Run("post jobs run by id", func(t *testing.T) {
		r := NewRuntime()
		log := []string{}

		for _, id := range []int{3, 0, 1} {
			job := NewJob(func() { log = append(log, fmt.Sprintf("post %d", id)) })
			job.ID = id
			r.scheduler.QueuePostFlushCb(job)
		}
		r.Flush()

		assert.Equal(t, []string{"post 1", "post 3", "post 0"}, log)
	})

	t.Run("jobs allowed to recurse can queue themselves", func(t *testing.T) {
		r := NewRuntime()

		recursive, plain := 0, 0

		var recursiveJob, plainJob *Job
		recursiveJob = NewJob(func() {
			recursive++
			if recursive < 3 {
				r.scheduler.QueueJob(recursiveJob)
			}
		})
		recursiveJob.Flags.Set(JobAllowRecurse)

		plainJob = NewJob(func() {
			plain++
			r.scheduler.QueueJob(plainJob)
		})

		r.scheduler.QueueJob(recursiveJob)
		r.scheduler.QueueJob(plainJob)
		r.Flush()

		assert.Equal(t, 3, recursive)
		assert.Equal(t, 1, plain)
	})

	t.Run("reports runaway jobs once and skips them", func(t *testing.T) {
		errs := []*ReactionError{}
		r := NewRuntime(
			WithRecursionLimit(5),
			WithErrorHandler(func(err *ReactionError) { errs = append(errs, err) }),
		)

		runs := 0
		var job *Job
		job = NewJob(func() {
			runs++
			r.scheduler.QueueJob(job)
		})
		job.Flags.Set(JobAllowRecurse)

		r.scheduler.QueueJob(job)
		r.Flush()

		assert.Equal(t, 5, runs)
		assert.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrRecursiveUpdates)
		assert.Equal(t, ErrorScheduler, errs[0].Code)
		assert.False(t, r.scheduler.Pending())
	})

	t.Run("disposed jobs never run", func(t *testing.T) {
		r := NewRuntime()
		runs := 0

		job := NewJob(func() { runs++ })
		r.scheduler.QueueJob(job)
		job.Flags.Set(JobDisposed)
		r.Flush()

		r.scheduler.QueueJob(job)
		r.Flush()

		assert.Equal(t, 0, runs)
	})

	t.Run("a panicking job does not block the others", func(t *testing.T) {
		errs := []*ReactionError{}
		r := NewRuntime(WithErrorHandler(func(err *ReactionError) { errs = append(errs, err) }))
		log := []string{}

		r.scheduler.QueueJob(NewJob(func() { panic("boom") }))
		r.scheduler.QueueJob(NewJob(func() { log = append(log, "second") }))
		r.NextTick(func() { panic("tick") })
		r.Flush()

		assert.Equal(t, []string{"second"}, log)
		assert.Len(t, errs, 2)
		assert.Equal(t, ErrorScheduler, errs[0].Code)
		assert.Equal(t, "boom", errs[0].Cause)
		assert.Equal(t, ErrorNextTick, errs[1].Code)
	})

	t.Run("instance update failures are attributed to the instance", func(t *testing.T) {
		errs := []*ReactionError{}
		r := NewRuntime(WithErrorHandler(func(err *ReactionError) { errs = append(errs, err) }))

		inst := r.NewInstance(nil, "panel")
		inst.QueueUpdate(func() { panic("render failed") })
		r.Flush()

		assert.Len(t, errs, 1)
		assert.Equal(t, ErrorInstanceUpdate, errs[0].Code)
		assert.Same(t, inst, errs[0].Instance)
	})

	t.Run("flushes the pre jobs of one instance", func(t *testing.T) {
		r := NewRuntime()
		log := []string{}

		a := r.NewInstance(nil, "a")
		b := r.NewInstance(nil, "b")

		for _, inst := range []*Instance{a, b} {
			job := NewJob(func() { log = append(log, "pre "+inst.Name) })
			job.ID = inst.UID
			job.Flags.Set(JobPre)
			r.scheduler.QueueJob(job)
		}

		b.FlushPre()
		assert.Equal(t, []string{"pre b"}, log)

		r.Flush()
		assert.Equal(t, []string{"pre b", "pre a"}, log)
	})

	t.Run("flush within a flush is a no-op", func(t *testing.T) {
		r := NewRuntime()
		log := []string{}

		r.scheduler.QueueJob(NewJob(func() {
			log = append(log, "outer")
			r.scheduler.QueueJob(NewJob(func() { log = append(log, "queued") }))
			r.Flush()
			log = append(log, "outer done")
		}))
		r.Flush()

		assert.Equal(t, []string{"outer", "outer done", "queued"}, log)
	})
}
