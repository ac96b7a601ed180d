package auth

import "sync"

// Observer fans out login/logout changes. Subscribers get the current
// identity immediately, then every subsequent change. A nil identity means
// signed out.
type Observer struct {
	mu      sync.Mutex
	current *Identity
	subs    map[int]func(*Identity)
	nextID  int
}

func NewObserver() *Observer {
	return &Observer{subs: make(map[int]func(*Identity))}
}

// Subscribe registers fn and fires it once with the current state. The
// returned function unsubscribes.
func (o *Observer) Subscribe(fn func(*Identity)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	current := o.current
	o.mu.Unlock()

	fn(current)
	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// SignedIn publishes a login.
func (o *Observer) SignedIn(id Identity) { o.publish(&id) }

// SignedOut publishes a logout.
func (o *Observer) SignedOut() { o.publish(nil) }

func (o *Observer) publish(id *Identity) {
	o.mu.Lock()
	o.current = id
	fns := make([]func(*Identity), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn(id)
	}
}
