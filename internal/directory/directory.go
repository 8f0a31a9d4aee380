package directory

import (
	"fmt"
	"reflect"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Key identifies one channel. Direction and side are deliberately absent:
// requests that only differ in those resolve to the same channel.
type Key struct {
	Actor       string
	Channel     string
	MessageType reflect.Type
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s[%v]", k.Actor, k.Channel, k.MessageType)
}

// Opaque is a type-erased channel. Callers recover the concrete type with a
// checked type assertion.
type Opaque = any

// Factory builds the channel for a key on first request.
type Factory func() Opaque

// Entry is a stored channel together with its creation time.
type Entry struct {
	Key       Key
	Value     Opaque
	CreatedAt time.Time
}

// Directory maps keys to type-erased channels. Entries are never updated or
// removed once created.
//
// A Directory does no locking: it must only be used by the goroutine that owns it.
type Directory struct {
	entries *orderedmap.OrderedMap[Key, *Entry]
	now     func() time.Time
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{
		entries: orderedmap.New[Key, *Entry](),
		now:     time.Now,
	}
}

// GetOrCreate returns the channel stored under key, creating it with create
// when it is missing. The boolean reports whether a new channel was created.
func (d *Directory) GetOrCreate(key Key, create Factory) (Opaque, bool) {
	if entry, ok := d.entries.Get(key); ok {
		return entry.Value, false
	}

	entry := &Entry{
		Key:       key,
		Value:     create(),
		CreatedAt: d.now(),
	}
	d.entries.Set(key, entry)
	return entry.Value, true
}

// Len returns the number of channels in the directory.
func (d *Directory) Len() int {
	return d.entries.Len()
}

// Entries returns a copy of every entry in creation order.
func (d *Directory) Entries() []Entry {
	result := make([]Entry, 0, d.entries.Len())
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, *pair.Value)
	}
	return result
}
