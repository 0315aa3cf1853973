package internal

// EffectFlags represents the state of a reactive effect
type EffectFlags uint16

const (
	EffectActive   EffectFlags = 1 << iota // Effect is subscribed and may run
	EffectRunning                          // Effect is currently evaluating
	EffectTracking                         // Reads during evaluation are recorded
	EffectNotified                         // Effect is already in the batch
	EffectDirty                            // Effect must run regardless of dep versions
	EffectPaused                           // Triggers are held until Resume
)

func (f EffectFlags) has(flag EffectFlags) bool {
	return f&flag != 0
}

func (f *EffectFlags) set(flag EffectFlags) {
	*f |= flag
}

func (f *EffectFlags) clear(flag EffectFlags) {
	*f &^= flag
}

// JobFlags tags a scheduled job with its scheduling behavior
type JobFlags uint8

const (
	JobQueued       JobFlags = 1 << iota // Job is pending in a queue
	JobPre                               // Job belongs to the pre-flush ordering domain
	JobAllowRecurse                      // Job may re-queue itself while running
	JobDisposed                          // Job must never run again
)

func (f JobFlags) Has(flag JobFlags) bool {
	return f&flag != 0
}

func (f *JobFlags) Set(flag JobFlags) {
	*f |= flag
}

func (f *JobFlags) Clear(flag JobFlags) {
	*f &^= flag
}
