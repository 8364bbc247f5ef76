package local

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"fjacquet/stock-categorizer/internal/imagefile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticModel struct {
	preds []Prediction
	err   error
}

func (m staticModel) Predict(_ context.Context, _ *imagefile.Image, k int) ([]Prediction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.preds) > k {
		return m.preds[:k], nil
	}
	return m.preds, nil
}

func TestHandle_LoadsOnce(t *testing.T) {
	var loads int32
	h := NewHandle(func(context.Context) (Model, error) {
		atomic.AddInt32(&loads, 1)
		return staticModel{}, nil
	})
	assert.False(t, h.Loaded())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Model(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := h.Model(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Loaded())
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestHandle_RetriesFailedLoad(t *testing.T) {
	calls := 0
	h := NewHandle(func(context.Context) (Model, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("weights missing")
		}
		return staticModel{}, nil
	})

	_, err := h.Model(context.Background())
	require.Error(t, err)
	assert.False(t, h.Loaded())

	m, err := h.Model(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, 2, calls)
}

func TestHandle_NoLoader(t *testing.T) {
	_, err := NewHandle(nil).Model(context.Background())
	assert.ErrorIs(t, err, ErrNoLoader)
}

func TestMetadataModel_FallsBackToFilename(t *testing.T) {
	img := imagefile.New("/tmp/3f2b8c1e-1a2b-4c3d-8e9f-0123456789ab-golden_retriever-on-beach_0042.png", []byte("not really a png"))

	preds, err := MetadataModel{}.Predict(context.Background(), img, DefaultTopK)
	require.NoError(t, err)
	require.Len(t, preds, 3)
	assert.Equal(t, "golden", preds[0].ClassName)
	assert.Equal(t, "retriever", preds[1].ClassName)
	assert.Equal(t, "beach", preds[2].ClassName)
	assert.InDelta(t, filenameProbability, preds[0].Probability, 1e-9)
	assert.Less(t, preds[1].Probability, preds[0].Probability)
}

func TestMetadataModel_TopK(t *testing.T) {
	img := imagefile.New("red-apple-banana-grape-pear-lemon-orange.jpg", []byte{0xff, 0xd8, 0xff, 0xd9})
	preds, err := MetadataModel{}.Predict(context.Background(), img, 3)
	require.NoError(t, err)
	assert.Len(t, preds, 3)
}

func TestMetadataModel_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := MetadataModel{}.Predict(ctx, imagefile.New("a.jpg", []byte{1}), 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilenameTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "camera name", in: "IMG_20240101_1234.JPG", want: nil},
		{name: "words", in: "Sunset over the Alps.jpeg", want: []string{"sunset", "over", "alps"}},
		{name: "hex run", in: "deadbeefcafe-city.png", want: []string{"city"}},
		{name: "directory ignored", in: "/uploads/cats/kitten.webp", want: []string{"kitten"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenameTokens(tt.in))
		})
	}
}
