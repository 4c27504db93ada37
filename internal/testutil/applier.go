package testutil

// RecordedCall is one mutation delivered to a RecordingApplier.
type RecordedCall struct {
	Method string // "Put" or "Delete"
	Key    string
	Value  string
}

// RecordingApplier records replayed mutations in order and folds them into a map.
type RecordingApplier struct {
	calls []RecordedCall
	state map[string]string
}

// NewRecordingApplier creates an empty applier.
func NewRecordingApplier() *RecordingApplier {
	return &RecordingApplier{state: make(map[string]string)}
}

func (a *RecordingApplier) Put(key, value []byte) {
	a.calls = append(a.calls, RecordedCall{Method: "Put", Key: string(key), Value: string(value)})
	a.state[string(key)] = string(value)
}

func (a *RecordingApplier) Delete(key []byte) {
	a.calls = append(a.calls, RecordedCall{Method: "Delete", Key: string(key)})
	delete(a.state, string(key))
}

// Calls returns the recorded calls for inspection.
func (a *RecordingApplier) Calls() []RecordedCall {
	return a.calls
}

// CallSequence returns the method names in call order.
func (a *RecordingApplier) CallSequence() []string {
	seq := make([]string, len(a.calls))
	for i, call := range a.calls {
		seq[i] = call.Method
	}
	return seq
}

// State returns the folded key/value view.
func (a *RecordingApplier) State() map[string]string {
	return a.state
}
