// Package timing provides the keyed delayed-action scheduler that drives
// every animation, spawn and timeout of the simulation.
package timing

// Key identifies a scheduled action. Owner is usually a stable entity id,
// Name the action, and Index separates batches of the same action.
type Key struct {
	Owner int
	Name  string
	Index int
}

// K is shorthand for a Key with a zero index.
func K(owner int, name string) Key {
	return Key{Owner: owner, Name: name}
}

// Func is the callback run when a delay expires.
type Func func()

type delay struct {
	key      Key
	deadline float64
	elapsed  float64
	fn       Func
	removed  bool
}

// Scheduler holds named delayed actions advanced by an external clock.
// It is not safe for concurrent use; the simulation owns it.
type Scheduler struct {
	entries map[Key]*delay
	order   []*delay
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{entries: make(map[Key]*delay)}
}

// Create schedules fn after t seconds unless key is already scheduled.
// It reports whether a new entry was inserted.
func (s *Scheduler) Create(key Key, t float64, fn Func) bool {
	if _, ok := s.entries[key]; ok {
		return false
	}
	s.insert(key, t, fn)
	return true
}

// Set schedules fn after t seconds, replacing any entry under key.
// A replaced entry restarts its clock and moves to the end of the firing order.
func (s *Scheduler) Set(key Key, t float64, fn Func) {
	if old, ok := s.entries[key]; ok {
		old.removed = true
	}
	s.insert(key, t, fn)
}

func (s *Scheduler) insert(key Key, t float64, fn Func) {
	d := &delay{key: key, deadline: t, fn: fn}
	s.entries[key] = d
	s.order = append(s.order, d)
}

// Remove drops each key. Missing keys are ignored.
func (s *Scheduler) Remove(keys ...Key) {
	for _, k := range keys {
		if d, ok := s.entries[k]; ok {
			d.removed = true
			delete(s.entries, k)
		}
	}
}

// RemoveOwner drops every key belonging to owner.
func (s *Scheduler) RemoveOwner(owner int) {
	for k, d := range s.entries {
		if k.Owner == owner {
			d.removed = true
			delete(s.entries, k)
		}
	}
}

// Has reports whether key is scheduled.
func (s *Scheduler) Has(key Key) bool {
	_, ok := s.entries[key]
	return ok
}

// Elapsed returns the time accumulated by the entry under key.
func (s *Scheduler) Elapsed(key Key) (float64, bool) {
	d, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	return d.elapsed, true
}

// Deadline returns the delay the entry under key waits for.
func (s *Scheduler) Deadline(key Key) (float64, bool) {
	d, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	return d.deadline, true
}

// Len returns the number of scheduled entries.
func (s *Scheduler) Len() int {
	return len(s.entries)
}

// Keys returns the scheduled keys in firing order.
func (s *Scheduler) Keys() []Key {
	keys := make([]Key, 0, len(s.entries))
	for _, d := range s.order {
		if !d.removed {
			keys = append(keys, d.key)
		}
	}
	return keys
}

// Clear drops every entry.
func (s *Scheduler) Clear() {
	for _, d := range s.order {
		d.removed = true
	}
	s.entries = make(map[Key]*delay)
	s.order = nil
}

// Tick advances every entry present when the tick starts by dt and runs the
// expired ones in insertion order. Entries added while ticking wait for the
// next tick; entries removed while ticking are skipped. An expired entry that
// its callback neither resets nor removes fires again on every later tick.
func (s *Scheduler) Tick(dt float64) {
	s.compact()
	snapshot := make([]*delay, len(s.order))
	copy(snapshot, s.order)

	for _, d := range snapshot {
		if d.removed {
			continue
		}
		d.elapsed += dt
		if d.elapsed >= d.deadline {
			d.fn()
		}
	}
}

func (s *Scheduler) compact() {
	live := s.order[:0]
	for _, d := range s.order {
		if !d.removed {
			live = append(live, d)
		}
	}
	for i := len(live); i < len(s.order); i++ {
		s.order[i] = nil
	}
	s.order = live
}
