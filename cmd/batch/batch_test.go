package batch

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/stock-categorizer/cmd/root"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
	root.Cmd.AddCommand(Cmd)
}

func writePNG(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: shade, B: uint8(y * 8), A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func clearProviderKeys(t *testing.T) {
	for _, env := range []string{
		"GOOGLE_VISION_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
		"OPENAI_API_KEY", "HUGGINGFACE_API_KEY", "IMAGGA_API_KEY",
	} {
		t.Setenv(env, "")
	}
}

func TestSucceeded(t *testing.T) {
	rows := []models.ImageResult{
		{Filename: "a.jpg", Category: models.CategoryFood, Provider: "OpenAI (gpt-4o)"},
		models.FailedImageResult("b.jpg", assert.AnError),
		{Filename: "c.jpg", Category: models.CategoryUnable, Provider: "Local Device (Metadata)"},
	}
	kept, names := succeeded(rows)
	assert.Len(t, kept, 2)
	assert.Equal(t, map[string]bool{"a.jpg": true, "c.jpg": true}, names)
}

func TestBatchCommand_LocalOnly(t *testing.T) {
	clearProviderKeys(t)
	dir := t.TempDir()
	imgDir := filepath.Join(dir, "photos")
	require.NoError(t, os.Mkdir(imgDir, 0750))
	writePNG(t, filepath.Join(imgDir, "golden_retriever.png"), 10)
	writePNG(t, filepath.Join(imgDir, "pizza_slice.png"), 200)
	require.NoError(t, os.WriteFile(filepath.Join(imgDir, "notes.txt"), []byte("x"), 0600))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\nbatch:\n  dedup: false\n"), 0600))
	output := filepath.Join(dir, "results.csv")

	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetArgs([]string{"batch", "--config", cfgPath,
		"--credentials", filepath.Join(dir, "none.yaml"),
		"-i", imgDir, "-o", output})
	require.NoError(t, root.Cmd.Execute())

	rows, err := report.NewWriter(',', nil).ReadFile(output)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "golden_retriever.png", rows[0].Filename)
	assert.Equal(t, models.CategoryAnimals, rows[0].Category)
	assert.Equal(t, "pizza_slice.png", rows[1].Filename)
	assert.Contains(t, out.String(), "Processed 2 images")
}
