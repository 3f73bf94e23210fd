package menu

import (
	"github.com/google/uuid"

	"github.com/1broseidon/deskbar/internal/event"
)

// Presenter runs menus off the event loop. The picker blocks in its own
// goroutine and the outcome comes back to the loop as an event.MenuClosed
// carrying the id Open returned.
type Presenter struct {
	backend Backend
	post    func(event.Message)
}

// NewPresenter posts results through post.
func NewPresenter(backend Backend, post func(event.Message)) *Presenter {
	return &Presenter{backend: backend, post: post}
}

// Open starts a menu and returns its id.
func (p *Presenter) Open(prompt string, items []MenuItem, at Anchor) string {
	id := uuid.NewString()
	tree := NewTree(p.backend, prompt, items, at)
	go func() {
		action, err := tree.Show()
		p.post(event.MenuClosed{ID: id, Action: action, Err: err})
	}()
	return id
}
