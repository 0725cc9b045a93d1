package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"ai-topic-assist-be/internal/entity"
	"ai-topic-assist-be/internal/repository/contract"
	"ai-topic-assist-be/internal/repository/implementation"
	"ai-topic-assist-be/internal/repository/specification"
	"ai-topic-assist-be/internal/repository/unitofwork"
	"ai-topic-assist-be/pkg/events"
	"ai-topic-assist-be/pkg/llm"

	"github.com/google/uuid"
)

// memStore backs the fake unit of work. Specifications are interpreted by type.
type memStore struct {
	mu       sync.Mutex
	nextId   int64
	messages map[int64]*entity.Message
	renames  []*entity.TopicRename
	commits  int
	failRead error
}

func newMemStore() *memStore {
	return &memStore{nextId: 1, messages: map[int64]*entity.Message{}}
}

func (s *memStore) seed(streamId int64, topic string, contents ...string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(contents))
	for _, c := range contents {
		id := s.nextId
		s.nextId++
		s.messages[id] = &entity.Message{Id: id, StreamId: streamId, Topic: topic, Content: c, CreatedAt: time.Now()}
		ids = append(ids, id)
	}
	return ids
}

func (s *memStore) topicOf(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[id].Topic
}

func (s *memStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUow{store: s}
}

var _ unitofwork.RepositoryFactory = &memStore{}

type memUow struct {
	store *memStore
}

func (u *memUow) Begin(ctx context.Context) error { return nil }
func (u *memUow) Commit() error {
	u.store.mu.Lock()
	u.store.commits++
	u.store.mu.Unlock()
	return nil
}
func (u *memUow) Rollback() error { return nil }

func (u *memUow) MessageRepository() contract.MessageRepository {
	return &memMessageRepo{store: u.store}
}

func (u *memUow) TopicRenameRepository() contract.TopicRenameRepository {
	return &memRenameRepo{store: u.store}
}

type memMessageRepo struct {
	store *memStore
}

func matches(m *entity.Message, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByMessageID:
			if m.Id != sp.ID {
				return false
			}
		case specification.ByMessageIDs:
			found := false
			for _, id := range sp.IDs {
				found = found || id == m.Id
			}
			if !found {
				return false
			}
		case specification.ByStream:
			if m.StreamId != sp.StreamID {
				return false
			}
		case specification.ByTopic:
			if !strings.EqualFold(m.Topic, sp.Topic) {
				return false
			}
		case specification.FromMessageID:
			if m.Id < sp.ID {
				return false
			}
		}
	}
	return true
}

func (r *memMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	message.Id = r.store.nextId
	r.store.nextId++
	message.CreatedAt = time.Now()
	cp := *message
	r.store.messages[message.Id] = &cp
	return nil
}

func (r *memMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failRead != nil {
		return nil, r.store.failRead
	}
	var out []*entity.Message
	for id := int64(1); id < r.store.nextId; id++ {
		if m, ok := r.store.messages[id]; ok && matches(m, specs) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMessageRepo) FindByIds(ctx context.Context, ids []int64) ([]*entity.Message, error) {
	found, err := r.FindAll(ctx, specification.ByMessageIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	return implementation.OrderByIds(found, ids), nil
}

func (r *memMessageRepo) UpdateTopic(ctx context.Context, topic string, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, m := range r.store.messages {
		if matches(m, specs) {
			m.Topic = topic
			n++
		}
	}
	return n, nil
}

func (r *memMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

type memRenameRepo struct {
	store *memStore
}

func (r *memRenameRepo) Create(ctx context.Context, rename *entity.TopicRename) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.renames = append(r.store.renames, rename)
	return nil
}

// FindAll returns the newest rows first, like the gorm repository.
func (r *memRenameRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TopicRename, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.TopicRename
	for i := len(r.store.renames) - 1; i >= 0; i-- {
		rename := r.store.renames[i]
		keep := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByStream:
				keep = keep && rename.StreamId == sp.StreamID
			case specification.ByAnchorMessageID:
				keep = keep && rename.AnchorMessageId == sp.ID
			}
		}
		if keep {
			out = append(out, rename)
		}
	}
	for _, spec := range specs {
		if page, ok := spec.(specification.Pagination); ok {
			if page.Offset >= len(out) {
				return []*entity.TopicRename{}, nil
			}
			out = out[page.Offset:]
			if page.Limit > 0 && page.Limit < len(out) {
				out = out[:page.Limit]
			}
		}
	}
	return out, nil
}

// fakeLLM answers with reply, or fails with err.
type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	history [][]llm.Message
	options []llm.Options
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, history)
	f.options = append(f.options, llm.Apply(llm.Options{}, opts...))
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeEvents) Publish(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.EventType()
	}
	return out
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

type pushed struct {
	userId    uuid.UUID
	eventType string
}

type fakeDelivery struct {
	mu     sync.Mutex
	pushes []pushed
}

func (f *fakeDelivery) SendToUser(userId uuid.UUID, eventType string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, pushed{userId: userId, eventType: eventType})
}

func (f *fakeDelivery) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.pushes))
	for i, p := range f.pushes {
		out[i] = p.eventType
	}
	return out
}
