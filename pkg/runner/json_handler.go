package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
)

// JSONHandler emits results as JSON Lines.
type JSONHandler struct {
	mu      sync.Mutex
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONHandler{Encoder: enc}
}

func (h *JSONHandler) Output(_ context.Context, res Result) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(res)
}
