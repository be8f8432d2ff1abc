package reassembly

import (
	"container/list"
	"sync"
	"time"

	"github.com/bft-labs/aisdecoder/pkg/log"
)

// DefaultSlotCapacity is the minimum slot array size allocated per key, so
// that any arrival order of up to 255 fragments fits without regrowth.
const DefaultSlotCapacity = 0xFF

// Options configures a Reassembler. The zero value keeps every incomplete
// message until it completes.
type Options struct {
	// MaxPending bounds the number of incomplete messages. When a new key
	// would exceed it, the oldest incomplete message is evicted.
	// Zero means unbounded.
	MaxPending int

	// MaxAge evicts incomplete messages older than this on every ingest.
	// Zero means no age limit.
	MaxAge time.Duration

	// Logger receives debug output for dropped input and evictions.
	Logger log.Logger

	// Now overrides the clock used for MaxAge. Defaults to time.Now.
	Now func() time.Time
}

// Stats is a snapshot of reassembler counters.
type Stats struct {
	// Pending is the number of incomplete messages currently buffered.
	Pending int

	// Single counts single-sentence messages passed straight through.
	Single uint64

	// Completed counts multi-part messages that were fully reassembled.
	Completed uint64

	// Malformed counts lines that could not be parsed.
	Malformed uint64

	// Refused counts fragments whose index fell outside the allocated slots.
	Refused uint64

	// Evicted counts incomplete messages dropped by MaxPending or MaxAge.
	Evicted uint64
}

// entry is the slot array for one incomplete message.
type entry struct {
	key     Key
	slots   []*Fragment
	created time.Time
	elem    *list.Element
}

// Reassembler buffers fragments per Key until a message is complete.
type Reassembler struct {
	mu      sync.Mutex
	entries map[Key]*entry
	order   *list.List // *entry, oldest first
	opts    Options
	logger  log.Logger
	stats   Stats
}

// New creates an empty Reassembler.
func New(opts Options) *Reassembler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Reassembler{
		entries: make(map[Key]*entry),
		order:   list.New(),
		opts:    opts,
		logger:  logger,
	}
}

// Ingest parses one raw line and adds it to the buffer.
// It returns the complete message and true when the line completes one.
// Malformed lines yield false and leave the buffer untouched.
func (r *Reassembler) Ingest(line []byte) (Message, bool) {
	f, err := ParseFragment(line)
	if err != nil {
		r.mu.Lock()
		r.stats.Malformed++
		r.mu.Unlock()
		r.logger.Debug("dropping malformed sentence", log.Bytes("line", line), log.Err(err))
		return Message{}, false
	}
	return r.Add(f)
}

// Add adds an already parsed fragment to the buffer.
func (r *Reassembler) Add(f Fragment) (Message, bool) {
	if f.Single() {
		r.mu.Lock()
		r.stats.Single++
		r.mu.Unlock()
		return assemble([]*Fragment{&f}), true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.Now()
	r.expire(now)

	key := f.Key()
	e, ok := r.entries[key]
	if !ok {
		e = r.allocate(key, f.Count, now)
	}

	if f.Index > len(e.slots) {
		r.stats.Refused++
		r.logger.Debug("fragment index outside allocated slots",
			log.Int("index", f.Index),
			log.Int("slots", len(e.slots)),
			log.Int("seq_id", key.SeqID),
			log.String("channel", key.Channel),
		)
		return Message{}, false
	}

	// Later fragments with the same index overwrite earlier ones.
	e.slots[f.Index-1] = &f

	if f.Count > len(e.slots) {
		return Message{}, false
	}
	parts := e.slots[:f.Count]
	for _, p := range parts {
		if p == nil {
			return Message{}, false
		}
	}

	r.remove(e)
	r.stats.Completed++
	return assemble(parts), true
}

// Pending returns the number of incomplete messages.
func (r *Reassembler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Stats returns a snapshot of the counters.
func (r *Reassembler) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Pending = len(r.entries)
	return s
}

// Reset drops every incomplete message.
func (r *Reassembler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[Key]*entry)
	r.order.Init()
}

// allocate creates the slot array for a new key. Caller holds mu.
func (r *Reassembler) allocate(key Key, count int, now time.Time) *entry {
	if r.opts.MaxPending > 0 {
		for len(r.entries) >= r.opts.MaxPending {
			r.evict(r.order.Front().Value.(*entry), "capacity")
		}
	}

	size := count
	if size < DefaultSlotCapacity {
		size = DefaultSlotCapacity
	}
	e := &entry{
		key:     key,
		slots:   make([]*Fragment, size),
		created: now,
	}
	e.elem = r.order.PushBack(e)
	r.entries[key] = e
	return e
}

// expire evicts entries older than MaxAge. Caller holds mu.
func (r *Reassembler) expire(now time.Time) {
	if r.opts.MaxAge <= 0 {
		return
	}
	for el := r.order.Front(); el != nil; el = r.order.Front() {
		e := el.Value.(*entry)
		if now.Sub(e.created) < r.opts.MaxAge {
			return
		}
		r.evict(e, "age")
	}
}

// evict drops an incomplete entry. Caller holds mu.
func (r *Reassembler) evict(e *entry, reason string) {
	r.remove(e)
	r.stats.Evicted++
	r.logger.Debug("evicted incomplete message",
		log.String("reason", reason),
		log.Int("seq_id", e.key.SeqID),
		log.String("channel", e.key.Channel),
	)
}

// remove deletes an entry from the map and the age list. Caller holds mu.
func (r *Reassembler) remove(e *entry) {
	delete(r.entries, e.key)
	r.order.Remove(e.elem)
}
