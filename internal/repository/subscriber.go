package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"lingua-daily/internal/model"
)

var ErrSubscriberNotFound = errors.New("subscriber not found")

type SubscriberRepository interface {
	FindByEmail(email string) (*model.Subscriber, error)
	// Upsert inserts or replaces the record whose normalized email matches.
	Upsert(sub *model.Subscriber) error
	All() []model.Subscriber
}

type subscribersDocument struct {
	Subscribers []model.Subscriber `json:"subscribers"`
}

type subscriberRepoImpl struct {
	mu   sync.Mutex
	path string
	doc  subscribersDocument
}

func NewSubscriberRepository(path string) (SubscriberRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	r := &subscriberRepoImpl{path: path}
	if !loadJSONFile(path, &r.doc) || r.doc.Subscribers == nil {
		r.doc = subscribersDocument{Subscribers: []model.Subscriber{}}
	}
	return r, nil
}

func (r *subscriberRepoImpl) FindByEmail(email string) (*model.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	norm := model.NormalizeEmail(email)
	for i := range r.doc.Subscribers {
		if model.NormalizeEmail(r.doc.Subscribers[i].Email) == norm {
			sub := r.doc.Subscribers[i]
			return &sub, nil
		}
	}
	return nil, ErrSubscriberNotFound
}

func (r *subscriberRepoImpl) Upsert(sub *model.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	norm := model.NormalizeEmail(sub.Email)
	idx := -1
	for i := range r.doc.Subscribers {
		if model.NormalizeEmail(r.doc.Subscribers[i].Email) == norm {
			idx = i
			break
		}
	}

	var prev *model.Subscriber
	if idx >= 0 {
		p := r.doc.Subscribers[idx]
		prev = &p
		r.doc.Subscribers[idx] = *sub
	} else {
		r.doc.Subscribers = append(r.doc.Subscribers, *sub)
	}

	if err := writeFileAtomic(r.path, &r.doc); err != nil {
		if prev != nil {
			r.doc.Subscribers[idx] = *prev
		} else {
			r.doc.Subscribers = r.doc.Subscribers[:len(r.doc.Subscribers)-1]
		}
		return fmt.Errorf("persist subscribers: %w", err)
	}
	return nil
}

func (r *subscriberRepoImpl) All() []model.Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Subscriber, len(r.doc.Subscribers))
	copy(out, r.doc.Subscribers)
	return out
}
