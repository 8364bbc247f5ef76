package local

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"fjacquet/stock-categorizer/internal/imagefile"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"
)

// DefaultInputSize is the square input edge of MobileNet-style classifiers.
const DefaultInputSize = 224

// ImageNet normalisation, per RGB channel.
var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// ONNXOptions configures an ONNX image classifier such as MobileNetV2.
type ONNXOptions struct {
	// ModelPath is the .onnx file.
	ModelPath string
	// LabelsPath holds one class name per line, in output order.
	LabelsPath string
	// SharedLibraryPath locates libonnxruntime; empty uses the runtime default.
	SharedLibraryPath string
	InputName         string
	OutputName        string
	InputSize         int
}

func (o ONNXOptions) withDefaults() ONNXOptions {
	if o.InputName == "" {
		o.InputName = "input"
	}
	if o.OutputName == "" {
		o.OutputName = "output"
	}
	if o.InputSize <= 0 {
		o.InputSize = DefaultInputSize
	}
	return o
}

var ortInit sync.Mutex

// NewONNXLoader returns a Loader that opens the classifier described by opts.
// The ONNX Runtime environment is initialised on the first load.
func NewONNXLoader(opts ONNXOptions) Loader {
	opts = opts.withDefaults()
	return func(ctx context.Context) (Model, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(opts.ModelPath); err != nil {
			return nil, fmt.Errorf("model file %q: %w", opts.ModelPath, err)
		}
		labels, err := ReadLabels(opts.LabelsPath)
		if err != nil {
			return nil, err
		}
		if err := initRuntime(opts.SharedLibraryPath); err != nil {
			return nil, err
		}

		size := int64(opts.InputSize)
		input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
		if err != nil {
			return nil, fmt.Errorf("failed to allocate input tensor: %w", err)
		}
		output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(labels))))
		if err != nil {
			_ = input.Destroy()
			return nil, fmt.Errorf("failed to allocate output tensor: %w", err)
		}
		session, err := ort.NewAdvancedSession(opts.ModelPath,
			[]string{opts.InputName}, []string{opts.OutputName},
			[]ort.Value{input}, []ort.Value{output}, nil)
		if err != nil {
			_ = input.Destroy()
			_ = output.Destroy()
			return nil, fmt.Errorf("failed to open ONNX session: %w", err)
		}

		return newONNXModel(labels, opts.InputSize, input.GetData(), output.GetData(), session.Run), nil
	}
}

func initRuntime(libPath string) error {
	ortInit.Lock()
	defer ortInit.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialise ONNX Runtime: %w", err)
	}
	return nil
}

// ReadLabels reads one class name per line, skipping blank lines.
func ReadLabels(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("labels file not configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer func() { _ = f.Close() }()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %q is empty", path)
	}
	return labels, nil
}

// onnxModel runs a single session. input and output alias the session's
// tensors, so Predict serialises on mu.
type onnxModel struct {
	labels []string
	size   int

	mu     sync.Mutex
	input  []float32
	output []float32
	run    func() error
}

func newONNXModel(labels []string, size int, input, output []float32, run func() error) *onnxModel {
	return &onnxModel{labels: labels, size: size, input: input, output: output, run: run}
}

// Predict implements Model.
func (m *onnxModel) Predict(ctx context.Context, img *imagefile.Image, k int) ([]Prediction, error) {
	src, _, err := img.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	fillTensor(m.input, src, m.size)
	if err := m.run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return topK(softmax(m.output), m.labels, k), nil
}

// fillTensor scales src to size x size and writes normalised NCHW floats.
func fillTensor(dst []float32, src image.Image, size int) {
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)

	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := scaled.PixOffset(x, y)
			p := y*size + x
			for c := 0; c < 3; c++ {
				v := float32(scaled.Pix[i+c]) / 255
				dst[c*plane+p] = (v - channelMean[c]) / channelStd[c]
			}
		}
	}
}

func softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(l))
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(float64(l) - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func topK(probs []float64, labels []string, k int) []Prediction {
	preds := make([]Prediction, 0, len(probs))
	for i, p := range probs {
		if i >= len(labels) {
			break
		}
		preds = append(preds, Prediction{ClassName: labels[i], Probability: p})
	}
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Probability > preds[j].Probability })
	if k > 0 && len(preds) > k {
		preds = preds[:k]
	}
	return preds
}
