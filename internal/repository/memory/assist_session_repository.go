package memory

import (
	"sync"
	"time"

	"ai-topic-assist-be/pkg/topicassist"

	"github.com/patrickmn/go-cache"
)

// AssistSessionRepository keeps one assistant controller per user. Idle
// sessions expire after the TTL, and every removal shuts the controller down.
type AssistSessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewAssistSessionRepository(ttl time.Duration) *AssistSessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := cache.New(ttl, ttl/6+time.Second)
	c.OnEvicted(func(_ string, v interface{}) {
		if ctrl, ok := v.(*topicassist.Controller); ok {
			// Shutdown waits on in-flight requests, keep it off the janitor goroutine.
			go ctrl.Shutdown()
		}
	})
	return &AssistSessionRepository{cache: c}
}

// GetOrCreate returns the user's controller, building one with create when none
// is live. Each access slides the expiry.
func (r *AssistSessionRepository) GetOrCreate(userId string, create func() *topicassist.Controller) *topicassist.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctrl, ok := r.touch(userId); ok {
		return ctrl
	}
	ctrl := create()
	r.cache.Set(userId, ctrl, cache.DefaultExpiration)
	return ctrl
}

func (r *AssistSessionRepository) Get(userId string) (*topicassist.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.touch(userId)
}

// touch slides the expiry of a live session. An expired one the janitor has not
// collected yet is evicted here, so OnEvicted shuts it down before a new
// controller can take its key.
func (r *AssistSessionRepository) touch(userId string) (*topicassist.Controller, bool) {
	x, found := r.cache.Get(userId)
	if !found {
		r.cache.Delete(userId)
		return nil, false
	}
	ctrl := x.(*topicassist.Controller)
	r.cache.Set(userId, ctrl, cache.DefaultExpiration)
	return ctrl, true
}

// Delete removes the user's controller and returns once it is shut down.
func (r *AssistSessionRepository) Delete(userId string) {
	r.mu.Lock()
	x, found := r.cache.Get(userId)
	r.cache.Delete(userId)
	r.mu.Unlock()

	if found {
		x.(*topicassist.Controller).Shutdown()
	}
}

func (r *AssistSessionRepository) Count() int {
	return r.cache.ItemCount()
}

// Flush shuts down every session.
func (r *AssistSessionRepository) Flush() {
	r.mu.Lock()
	items := r.cache.Items()
	r.cache.Flush()
	r.mu.Unlock()

	for _, item := range items {
		if ctrl, ok := item.Object.(*topicassist.Controller); ok {
			ctrl.Shutdown()
		}
	}
}
