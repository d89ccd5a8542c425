package markdown

import (
	"context"
	"sync"
)

// LoadingText is shown while a render is in flight.
const LoadingText = "Loading..."

// Widget holds the markdown property of a hover and the HTML currently on display.
//
// Every non-empty assignment starts a new render. Renders of non-empty markdown are not
// coordinated: whichever finishes last decides what is shown, even if it was started first.
// Once the markdown is cleared, no earlier render can bring content back.
type Widget struct {
	renderer *Renderer
	onUpdate func(string)

	mu       sync.Mutex
	gen      uint64
	cleared  uint64 // generation of the latest empty assignment
	markdown string
	view     string
	err      error

	wg sync.WaitGroup
}

type WidgetOption func(*Widget)

// WithOnUpdate registers a callback invoked with the new view whenever it changes.
func WithOnUpdate(fn func(view string)) WidgetOption {
	return func(w *Widget) {
		w.onUpdate = fn
	}
}

func NewWidget(renderer *Renderer, opts ...WidgetOption) *Widget {
	w := &Widget{renderer: renderer}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetMarkdown assigns the markdown property.
func (w *Widget) SetMarkdown(ctx context.Context, md string) {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.markdown = md
	w.err = nil
	if md == "" {
		w.cleared = gen
		w.view = ""
	} else {
		w.view = LoadingText
	}
	w.mu.Unlock()
	w.notify()

	if md == "" {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		html, err := w.renderer.Render(ctx, md)

		if w.settle(gen, string(html), err) {
			w.notify()
		}
	}()
}

// settle records the outcome of the render started by assignment gen and reports whether
// anything changed. Results of renders started before the markdown was last cleared are
// dropped, and only the latest assignment may report an error.
func (w *Widget) settle(gen uint64, html string, err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen < w.cleared {
		return false
	}
	if err != nil {
		if gen != w.gen {
			return false
		}
		w.err = err
		return true
	}
	w.view = html
	return true
}

func (w *Widget) notify() {
	if w.onUpdate == nil {
		return
	}
	w.onUpdate(w.View())
}

// Markdown returns the last assigned markdown.
func (w *Widget) Markdown() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.markdown
}

// View returns the content currently on display.
func (w *Widget) View() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Err returns the error of the render started by the latest assignment, if it failed.
// A failed render leaves the current view in place.
func (w *Widget) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Wait blocks until every started render has settled.
func (w *Widget) Wait() {
	w.wg.Wait()
}
