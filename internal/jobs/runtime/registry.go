package runtime

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownJobType = errors.New("unknown job type")

// Handler runs one kind of generation job against a runtime Context.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return errors.New("register: nil handler")
	}
	jobType := h.Type()
	if jobType == "" {
		return errors.New("register: handler has empty type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.handlers[jobType]; dup {
		return fmt.Errorf("register: duplicate handler for %q", jobType)
	}
	r.handlers[jobType] = h
	return nil
}

// Resolve returns the handler for jobType or ErrUnknownJobType.
func (r *Registry) Resolve(jobType string) (Handler, error) {
	r.mu.RLock()
	h, ok := r.handlers[jobType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}
	return h, nil
}

// Types lists registered job types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
