package internal

type Tracker struct {
	tracking bool

	active subscriber // for reactive dependency tracking
}

func NewTracker() *Tracker {
	return &Tracker{
		tracking: true,
	}
}

func (t *Tracker) RunWithSubscriber(sub subscriber, fn func()) {
	prevActive := t.active
	prevTracking := t.tracking

	t.active = sub
	t.tracking = true

	defer func() {
		t.active = prevActive
		t.tracking = prevTracking
	}()

	fn()
}

func (t *Tracker) RunUntracked(fn func()) {
	prev := t.tracking
	t.tracking = false
	defer func() { t.tracking = prev }()

	fn()
}

func (t *Tracker) Active() subscriber {
	return t.active
}

func (t *Tracker) ShouldTrack() bool {
	return t.active != nil && t.tracking
}
