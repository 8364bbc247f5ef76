// Package local classifies images on the host without calling a remote
// provider. A Model produces ranked predictions and a Policy turns them into a
// taxonomy category.
package local

import (
	"context"
	"errors"
	"sync"

	"fjacquet/stock-categorizer/internal/imagefile"

	"golang.org/x/sync/singleflight"
)

// DefaultTopK is the number of predictions requested from the model.
const DefaultTopK = 5

// Prediction is one ranked class produced by a Model.
type Prediction struct {
	ClassName   string
	Probability float64
}

// Model predicts the top k classes for an image, best first.
type Model interface {
	Predict(ctx context.Context, img *imagefile.Image, k int) ([]Prediction, error)
}

// Loader builds a Model. It is called at most once per successful load.
type Loader func(ctx context.Context) (Model, error)

// ErrNoLoader is returned by a Handle created without a loader.
var ErrNoLoader = errors.New("no local model loader configured")

// Handle owns the lazily loaded model. Concurrent first calls share a single
// load; a failed load is retried by the next call.
type Handle struct {
	load  Loader
	group singleflight.Group

	mu    sync.RWMutex
	model Model
}

// NewHandle returns a Handle that loads its model with load on first use.
func NewHandle(load Loader) *Handle {
	return &Handle{load: load}
}

// Loaded reports whether the model is ready.
func (h *Handle) Loaded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.model != nil
}

// Model returns the loaded model, loading it if needed.
func (h *Handle) Model(ctx context.Context) (Model, error) {
	h.mu.RLock()
	m := h.model
	h.mu.RUnlock()
	if m != nil {
		return m, nil
	}
	if h.load == nil {
		return nil, ErrNoLoader
	}

	v, err, _ := h.group.Do("model", func() (interface{}, error) {
		h.mu.RLock()
		cached := h.model
		h.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := h.load(ctx)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			return nil, errors.New("local model loader returned no model")
		}

		h.mu.Lock()
		h.model = loaded
		h.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Model), nil
}
