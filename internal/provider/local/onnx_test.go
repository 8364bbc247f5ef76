package local

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/stock-categorizer/internal/imagefile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, c color.RGBA, w, h int) *imagefile.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return imagefile.New("solid.png", buf.Bytes())
}

func TestONNXModel_PredictRanksSoftmaxOutput(t *testing.T) {
	labels := []string{"tabby", "golden retriever", "espresso"}
	input := make([]float32, 3*8*8)
	output := make([]float32, len(labels))
	runs := 0
	m := newONNXModel(labels, 8, input, output, func() error {
		runs++
		copy(output, []float32{1, 3, 2})
		return nil
	})

	preds, err := m.Predict(context.Background(), solidPNG(t, color.RGBA{255, 0, 0, 255}, 20, 10), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
	require.Len(t, preds, 2)
	assert.Equal(t, "golden retriever", preds[0].ClassName)
	assert.Equal(t, "espresso", preds[1].ClassName)
	assert.Greater(t, preds[0].Probability, preds[1].Probability)
	assert.InDelta(t, 0.665, preds[0].Probability, 0.001)
}

func TestONNXModel_PredictNormalisesPixels(t *testing.T) {
	input := make([]float32, 3*4*4)
	m := newONNXModel([]string{"a"}, 4, input, make([]float32, 1), func() error { return nil })

	_, err := m.Predict(context.Background(), solidPNG(t, color.RGBA{255, 0, 0, 255}, 16, 16), 1)
	require.NoError(t, err)

	plane := 16
	assert.InDelta(t, (1-0.485)/0.229, input[0], 1e-4)
	assert.InDelta(t, (0-0.456)/0.224, input[plane], 1e-4)
	assert.InDelta(t, (0-0.406)/0.225, input[2*plane+plane-1], 1e-4)
}

func TestONNXModel_PredictErrors(t *testing.T) {
	m := newONNXModel([]string{"a"}, 4, make([]float32, 48), make([]float32, 1), func() error {
		return errors.New("session closed")
	})

	_, err := m.Predict(context.Background(), imagefile.New("x.png", []byte("not an image")), 1)
	assert.ErrorContains(t, err, "failed to decode image")

	_, err = m.Predict(context.Background(), solidPNG(t, color.RGBA{A: 255}, 4, 4), 1)
	assert.ErrorContains(t, err, "inference failed: session closed")
}

func TestSoftmax(t *testing.T) {
	probs := softmax([]float32{1000, 1000})
	assert.InDelta(t, 0.5, probs[0], 1e-9)
	assert.InDelta(t, 0.5, probs[1], 1e-9)
	assert.Nil(t, softmax(nil))
}

func TestReadLabels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("tench\n\n goldfish \ngreat white shark\n"), 0o600))

	labels, err := ReadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"tench", "goldfish", "great white shark"}, labels)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0o600))
	_, err = ReadLabels(empty)
	assert.ErrorContains(t, err, "is empty")

	_, err = ReadLabels("")
	assert.ErrorContains(t, err, "not configured")
}

func TestONNXLoader_MissingModelFile(t *testing.T) {
	h := NewHandle(NewONNXLoader(ONNXOptions{ModelPath: filepath.Join(t.TempDir(), "mobilenetv2.onnx")}))

	_, err := h.Model(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, h.Loaded())
}
