package objectstore

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// PartRegistry tracks the parts of native multipart uploads started in this process.
//
// Operations on different upload ids never block each other. Operations on the same
// id are serialised for their whole duration, including the callback, so part numbers
// are handed out strictly in call order and each number is used at most once.
type PartRegistry interface {
	// Register creates an empty manifest for uploadID.
	Register(uploadID string) error

	// NextPart reserves the next part number for uploadID and calls fn with it.
	// On success the returned part is appended and a copy of the manifest returned.
	// If fn fails nothing is recorded and the number is handed out again next time.
	NextPart(uploadID string, fn func(partNumber int32) (Part, error)) ([]Part, error)

	// Manifest returns a copy of the parts recorded so far.
	Manifest(uploadID string) ([]Part, error)

	// Complete calls fn with the ordered manifest and forgets uploadID if fn succeeds.
	Complete(uploadID string, fn func(parts []Part) error) error

	// Remove forgets uploadID and reports whether it was registered.
	// Removing an unknown id is a no-op.
	Remove(uploadID string) bool

	// Len returns the number of registered uploads.
	Len() int
}

type uploadSession struct {
	mu     sync.Mutex
	parts  []Part
	next   int32
	closed atomic.Bool
}

// MemoryRegistry is the process-local PartRegistry used by both adapters.
// Entries do not survive a restart.
type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[string]*uploadSession
}

var _ PartRegistry = (*MemoryRegistry)(nil)

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]*uploadSession)}
}

func (r *MemoryRegistry) Register(uploadID string) error {
	if uploadID == "" {
		return fmt.Errorf("%w: upload id is empty", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[uploadID]; ok {
		return fmt.Errorf("%w: %s", ErrUploadExists, uploadID)
	}
	r.sessions[uploadID] = &uploadSession{next: 1}
	return nil
}

// acquire looks up the session and locks it. The caller must unlock.
// A session removed while the caller waited on its lock is reported as unknown.
func (r *MemoryRegistry) acquire(uploadID string) (*uploadSession, error) {
	r.mu.Lock()
	session, ok := r.sessions[uploadID]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUpload, uploadID)
	}

	session.mu.Lock()
	if session.closed.Load() {
		session.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownUpload, uploadID)
	}
	return session, nil
}

func (r *MemoryRegistry) NextPart(uploadID string, fn func(partNumber int32) (Part, error)) ([]Part, error) {
	session, err := r.acquire(uploadID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	part, err := fn(session.next)
	if err != nil {
		return nil, err
	}
	part.Number = session.next
	session.parts = append(session.parts, part)
	session.next++

	return copyParts(session.parts), nil
}

func (r *MemoryRegistry) Manifest(uploadID string) ([]Part, error) {
	session, err := r.acquire(uploadID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	return copyParts(session.parts), nil
}

func (r *MemoryRegistry) Complete(uploadID string, fn func(parts []Part) error) error {
	session, err := r.acquire(uploadID)
	if err != nil {
		return err
	}
	defer session.mu.Unlock()

	if len(session.parts) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyManifest, uploadID)
	}
	for i, p := range session.parts {
		if p.Number != int32(i+1) {
			return fmt.Errorf("%w: %s expected part %d, found %d", ErrIncompleteManifest, uploadID, i+1, p.Number)
		}
	}

	if err := fn(copyParts(session.parts)); err != nil {
		return err
	}

	session.closed.Store(true)
	r.mu.Lock()
	if r.sessions[uploadID] == session {
		delete(r.sessions, uploadID)
	}
	r.mu.Unlock()
	return nil
}

// Remove does not wait for an in-flight call on the same id. That call finishes
// against the detached session and its result is discarded with it; callers
// queued behind it fail with ErrUnknownUpload.
func (r *MemoryRegistry) Remove(uploadID string) bool {
	r.mu.Lock()
	session, ok := r.sessions[uploadID]
	delete(r.sessions, uploadID)
	r.mu.Unlock()

	if ok {
		session.closed.Store(true)
	}
	return ok
}

func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func copyParts(parts []Part) []Part {
	out := make([]Part, len(parts))
	copy(out, parts)
	return out
}
