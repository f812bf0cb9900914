package collision

// Tracker interns name strings and detects hash collisions during encoding.
// Names are keyed by their 64-bit hash to avoid string comparisons on the
// hot path. When two distinct names produce the same hash, the tracker
// falls back to an exact string map so interning stays correct.
type Tracker struct {
	byHash       map[uint64]int // Hash → index into nameList
	byName       map[string]int // Exact fallback, populated after a collision
	nameList     []string       // Ordered list in interning order
	hasCollision bool           // Whether a collision has been detected
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byHash:   make(map[uint64]int),
		nameList: make([]string, 0),
	}
}

// Index returns the interning index of name and whether it has been tracked.
func (t *Tracker) Index(name string, hash uint64) (int, bool) {
	if t.hasCollision {
		idx, ok := t.byName[name]
		return idx, ok
	}

	idx, ok := t.byHash[hash]
	if !ok {
		return 0, false
	}

	if t.nameList[idx] != name {
		// Hash collision: different name, same hash. Switch to exact
		// lookups from here on.
		t.promote()
		idx, ok = t.byName[name]

		return idx, ok
	}

	return idx, true
}

// Track interns name under hash and returns its index.
// The first Track of a given name assigns the next sequential index;
// tracking the same name again returns the existing index.
func (t *Tracker) Track(name string, hash uint64) int {
	if idx, ok := t.Index(name, hash); ok {
		return idx
	}

	idx := len(t.nameList)
	t.nameList = append(t.nameList, name)

	if t.hasCollision {
		t.byName[name] = idx
	} else {
		t.byHash[hash] = idx
	}

	return idx
}

// promote rebuilds the exact string map from the ordered name list.
func (t *Tracker) promote() {
	t.byName = make(map[string]int, len(t.nameList))
	for i, name := range t.nameList {
		t.byName[name] = i
	}
	t.hasCollision = true
}

// HasCollision returns true if a hash collision has been detected.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the ordered list of interned names.
// The order matches the order in which Track was called.
func (t *Tracker) Names() []string {
	return t.nameList
}

// Count returns the number of interned names.
func (t *Tracker) Count() int {
	return len(t.nameList)
}

// Reset clears all interned names and collision state.
// This allows reusing the tracker for a new session.
func (t *Tracker) Reset() {
	// Clear maps but preserve capacity to avoid allocations
	for k := range t.byHash {
		delete(t.byHash, k)
	}
	t.byName = nil
	t.nameList = t.nameList[:0]
	t.hasCollision = false
}
