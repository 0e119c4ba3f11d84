package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// TextHandler writes one result per line.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer
	// ErrWriter receives failed expansions. Defaults to Writer.
	ErrWriter io.Writer
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerErrWriter sends failures to a separate stream.
func WithTextHandlerErrWriter(w io.Writer) TextHandlerOption {
	return func(h *TextHandler) {
		h.ErrWriter = w
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{Writer: w}
	for _, opt := range opts {
		opt(h)
	}
	if h.ErrWriter == nil {
		h.ErrWriter = h.Writer
	}
	return h
}

func (h *TextHandler) Output(_ context.Context, res Result) error {
	if res.Error != "" {
		_, err := fmt.Fprintf(h.ErrWriter, "Error: %s\n", res.Error)
		return err
	}

	output := res.Text
	if h.Renderer != nil {
		// Rendering is cosmetic; fall back to the raw text.
		if rendered, err := h.Renderer(res.Text); err == nil {
			output = strings.TrimSpace(rendered)
		}
	}
	_, err := fmt.Fprintln(h.Writer, output)
	return err
}
