package sigwatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	t.Run("pre watchers run their first effect before returning then on flush", func(t *testing.T) {
		log := []string{}

		count := NewRef(0)
		WatchEffect(func(OnCleanup) {
			log = append(log, fmt.Sprintf("effect %d", count.Get()))
		})
		log = append(log, "registered")

		count.Set(1)
		log = append(log, "written")
		assert.True(t, Pending())

		Flush()

		assert.Equal(t, []string{"effect 0", "registered", "written", "effect 1"}, log)
		assert.False(t, Pending())
	})

	t.Run("sync watchers run at invalidation", func(t *testing.T) {
		log := []string{}

		count := NewRef(0)
		WatchSyncEffect(func(OnCleanup) {
			log = append(log, fmt.Sprintf("effect %d", count.Get()))
		})
		Watch(count, func(value, oldValue int, _ OnCleanup) {
			log = append(log, fmt.Sprintf("callback %d -> %d", oldValue, value))
		}, WithFlush(FlushSync))

		count.Set(1)
		log = append(log, "written")

		assert.Equal(t, []string{"effect 0", "effect 1", "callback 0 -> 1", "written"}, log)
	})

	t.Run("post watchers run after pre watchers and instance updates", func(t *testing.T) {
		log := []string{}

		inst := NewInstance("panel")
		count := NewRef(0)

		Watch(count, func(int, int, OnCleanup) {
			log = append(log, "post")
		}, WithFlush(FlushPost), WithInstance(inst))
		Watch(count, func(int, int, OnCleanup) {
			log = append(log, "pre")
			inst.QueueUpdate(func() { log = append(log, "update") })
		}, WithInstance(inst))

		count.Set(1)
		Flush()

		assert.Equal(t, []string{"pre", "update", "post"}, log)
	})

	t.Run("invalidations before a flush are coalesced", func(t *testing.T) {
		for _, mode := range []FlushMode{FlushPre, FlushPost} {
			log := []string{}

			count := NewRef(0)
			Watch(count, func(value, oldValue int, _ OnCleanup) {
				log = append(log, fmt.Sprintf("%d -> %d", oldValue, value))
			}, WithFlush(mode))

			for i := 1; i <= 5; i++ {
				count.Set(i)
			}
			Flush()
			Flush()

			assert.Equal(t, []string{"0 -> 5"}, log, mode.String())
		}
	})

	t.Run("immediate callbacks run at registration with a zero old value", func(t *testing.T) {
		log := []string{}

		name := NewRef("a")
		Watch(name, func(value, oldValue string, _ OnCleanup) {
			log = append(log, fmt.Sprintf("%q -> %q", oldValue, value))
		}, WithImmediate())

		name.Set("b")
		Flush()

		assert.Equal(t, []string{`"" -> "a"`, `"a" -> "b"`}, log)
	})

	t.Run("once watchers stop after their first callback", func(t *testing.T) {
		calls := 0

		count := NewRef(0)
		h := Watch(count, func(int, int, OnCleanup) { calls++ }, WithOnce())

		count.Set(1)
		Flush()
		count.Set(2)
		Flush()

		assert.Equal(t, 1, calls)
		assert.True(t, h.Stopped())

		h.Run()
		assert.Equal(t, 1, calls)
	})

	t.Run("the immediate run does not consume once", func(t *testing.T) {
		calls := 0

		count := NewRef(0)
		h := Watch(count, func(int, int, OnCleanup) { calls++ }, WithOnce(), WithImmediate())
		assert.False(t, h.Stopped())

		count.Set(1)
		Flush()
		count.Set(2)
		Flush()

		assert.Equal(t, 2, calls)
		assert.True(t, h.Stopped())
	})

	t.Run("a failing once callback is retried", func(t *testing.T) {
		Configure(WithErrorHandler(func(*ReactionError) {}))
		defer Release()
		calls := 0

		count := NewRef(0)
		h := Watch(count, func(value, _ int, _ OnCleanup) {
			calls++
			if value == 1 {
				panic("not yet")
			}
		}, WithOnce())

		count.Set(1)
		Flush()
		assert.False(t, h.Stopped())

		count.Set(2)
		Flush()
		assert.True(t, h.Stopped())
		assert.Equal(t, 2, calls)
	})

	t.Run("callbacks writing their own source are bounded", func(t *testing.T) {
		errs := []*ReactionError{}
		Configure(
			WithRecursionLimit(20),
			WithErrorHandler(func(err *ReactionError) { errs = append(errs, err) }),
		)
		defer Release()

		calls := 0
		count := NewRef(0)
		Watch(count, func(value, _ int, _ OnCleanup) {
			calls++
			count.Set(value + 1)
		})

		count.Set(1)
		Flush()

		assert.Equal(t, 20, calls)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrRecursiveUpdates)
	})

	t.Run("effects writing what they read do not re-trigger themselves", func(t *testing.T) {
		runs := 0

		count := NewRef(0)
		WatchSyncEffect(func(OnCleanup) {
			runs++
			count.Set(count.Get() + 1)
		})

		assert.Equal(t, 1, runs)
		assert.Equal(t, 1, count.Peek())
	})

	t.Run("pre jobs of nested instances run parent first", func(t *testing.T) {
		log := []string{}

		parent := NewInstance("parent")
		child := parent.NewChild("child")
		count := NewRef(0)

		for _, inst := range []*Instance{child, parent} {
			Watch(count, func(int, int, OnCleanup) {
				log = append(log, inst.Name())
			}, WithInstance(inst))
		}

		count.Set(1)
		Flush()

		assert.Less(t, parent.UID(), child.UID())
		assert.Equal(t, []string{"parent", "child"}, log)
	})

	t.Run("stop prevents a pending trigger", func(t *testing.T) {
		calls := 0

		count := NewRef(0)
		h := Watch(count, func(int, int, OnCleanup) { calls++ })

		count.Set(1)
		h.Stop()
		Flush()
		count.Set(2)
		Flush()

		assert.Equal(t, 0, calls)
	})

	t.Run("a failing watcher does not block its siblings", func(t *testing.T) {
		errs := []*ReactionError{}
		Configure(WithErrorHandler(func(err *ReactionError) { errs = append(errs, err) }))
		defer Release()
		log := []string{}

		count := NewRef(0)
		Watch(count, func(int, int, OnCleanup) { panic("boom") })
		Watch(count, func(value, _ int, _ OnCleanup) {
			log = append(log, fmt.Sprintf("sibling %d", value))
		})

		count.Set(1)
		Flush()

		assert.Equal(t, []string{"sibling 1"}, log)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrorWatchCallback, errs[0].Code)
		assert.Equal(t, "boom", errs[0].Cause)
	})

	t.Run("unmount stops the instance's watchers", func(t *testing.T) {
		log := []string{}

		inst := NewInstance("panel")
		count := NewRef(0)

		WatchEffect(func(onCleanup OnCleanup) {
			log = append(log, fmt.Sprintf("effect %d", count.Get()))
			onCleanup(func() { log = append(log, "cleanup") })
		}, WithInstance(inst))

		inst.Unmount()
		count.Set(1)
		Flush()

		assert.Equal(t, []string{"effect 0", "cleanup"}, log)
	})

	t.Run("watch list", func(t *testing.T) {
		log := []string{}

		first := NewRef("a")
		last := NewRef("b")
		full := Getter[string](func() string { return first.Get() + " " + last.Get() })

		WatchList([]AnySource{first, full}, func(values, oldValues []any, _ OnCleanup) {
			log = append(log, fmt.Sprintf("%v -> %v", oldValues, values))
		}, WithImmediate())

		Batch(func() {
			first.Set("c")
			last.Set("d")
		})
		Flush()

		assert.Equal(t, []string{"[] -> [a a b]", "[a a b] -> [c c d]"}, log)
	})

	t.Run("watch store", func(t *testing.T) {
		log := []string{}

		inner := NewStore(map[string]any{"n": 0})
		settings := NewStore(map[string]any{"inner": inner})

		WatchStore(settings, func(s *Store, _ OnCleanup) {
			log = append(log, fmt.Sprintf("deep %v", s.Keys()))
		}, WithFlush(FlushSync))
		WatchStore(settings, func(s *Store, _ OnCleanup) {
			log = append(log, "shallow")
		}, WithFlush(FlushSync), WithShallow())

		inner.Set("n", 1)
		settings.Set("theme", "dark")

		assert.Equal(t, []string{"deep [inner]", "deep [inner theme]", "shallow"}, log)
	})

	t.Run("deep watch of a ref", func(t *testing.T) {
		calls := 0

		inner := NewRef(0)
		outer := NewRef([]*Ref[int]{inner})

		Watch(outer, func([]*Ref[int], []*Ref[int], OnCleanup) { calls++ }, WithDeep(), WithFlush(FlushSync))
		Watch(outer, func([]*Ref[int], []*Ref[int], OnCleanup) { calls += 10 }, WithFlush(FlushSync))

		inner.Set(1)

		assert.Equal(t, 1, calls)
	})

	t.Run("deep watch of a self-referencing map", func(t *testing.T) {
		calls := 0

		inner := NewRef(0)
		m := map[string]any{"inner": inner}
		m["self"] = m

		Watch(NewRef(m), func(map[string]any, map[string]any, OnCleanup) { calls++ }, WithDeep(), WithFlush(FlushSync))

		inner.Set(1)

		assert.Equal(t, 1, calls)
	})

	t.Run("computed source", func(t *testing.T) {
		log := []string{}

		count := NewRef(1)
		double := NewComputed(func() int { return count.Get() * 2 })

		Watch(double, func(value, oldValue int, _ OnCleanup) {
			log = append(log, fmt.Sprintf("%d -> %d", oldValue, value))
		})

		count.Set(2)
		Flush()

		assert.Equal(t, []string{"2 -> 4"}, log)
	})
}
