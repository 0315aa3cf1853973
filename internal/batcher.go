package internal

type Batcher struct {
	// each nested batch increases the depth by 1
	// if depth > 0, notified effects are held until the outermost batch is complete
	depth int

	// notified effects in notification order
	pending []*Effect
}

func NewBatcher() *Batcher {
	return &Batcher{
		depth: 0,
	}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

func (b *Batcher) Batch(fn func()) {
	b.start()
	defer b.end()

	fn()
}

func (b *Batcher) start() {
	b.depth++
}

func (b *Batcher) add(e *Effect) {
	b.pending = append(b.pending, e)
}

// end closes a batch, the outermost one triggers every notified effect.
// A panic from an effect does not prevent the others from being triggered,
// the first one is re-raised afterwards.
func (b *Batcher) end() {
	b.depth--
	if b.depth > 0 {
		return
	}

	var failure any
	for len(b.pending) > 0 {
		effects := b.pending
		b.pending = nil

		for _, e := range effects {
			e.flags.clear(EffectNotified)
			if !e.flags.has(EffectActive) {
				continue
			}

			if r := triggerEffect(e); r != nil && failure == nil {
				failure = r
			}
		}
	}

	if failure != nil {
		panic(failure)
	}
}

func triggerEffect(e *Effect) (failure any) {
	defer func() { failure = recover() }()

	e.trigger()
	return nil
}
