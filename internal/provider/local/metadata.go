package local

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"fjacquet/stock-categorizer/internal/imagefile"

	"github.com/bep/imagemeta"
)

// Probabilities assigned by the metadata labeller. Embedded keywords are
// trusted more than descriptions, and descriptions more than file names.
const (
	keywordProbability     = 0.9
	descriptionProbability = 0.7
	filenameProbability    = 0.3
	rankDecay              = 0.02
	minTokenLength         = 3
)

// wantedTags lists the metadata tags the labeller reads, per source.
var wantedTags = map[imagemeta.Source]map[string]bool{
	imagemeta.IPTC: {
		"Keywords":         true,
		"Caption-Abstract": true,
		"ObjectName":       true,
	},
	imagemeta.EXIF: {
		"ImageDescription": true,
		"XPKeywords":       true,
		"XPSubject":        true,
	},
	imagemeta.XMP: {
		"Subject":     true,
		"Description": true,
		"Title":       true,
	},
}

var (
	tokenSplit = regexp.MustCompile(`[^a-zA-Z]+`)
	hexLike    = regexp.MustCompile(`^[a-fA-F0-9]+$`)
	uuidPrefix = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}-`)
	stopTokens = map[string]bool{"img": true, "dsc": true, "image": true, "photo": true, "pic": true, "copy": true, "edit": true, "final": true, "the": true, "and": true, "with": true}
)

// MetadataModel labels images from the keywords and descriptions embedded in
// their IPTC, EXIF and XMP metadata, falling back to tokens of the file name.
type MetadataModel struct{}

// LoadMetadataModel is the Loader for MetadataModel.
func LoadMetadataModel(context.Context) (Model, error) {
	return MetadataModel{}, nil
}

// Predict implements Model.
func (MetadataModel) Predict(ctx context.Context, img *imagefile.Image, k int) ([]Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = DefaultTopK
	}

	keywords, descriptions := extractTerms(img)

	var preds []Prediction
	seen := make(map[string]bool)
	add := func(class string, base float64) {
		class = strings.ToLower(strings.TrimSpace(class))
		if class == "" || seen[class] || len(preds) >= k {
			return
		}
		seen[class] = true
		p := base - rankDecay*float64(len(preds))
		if p < 0.01 {
			p = 0.01
		}
		preds = append(preds, Prediction{ClassName: class, Probability: p})
	}

	for _, kw := range keywords {
		add(kw, keywordProbability)
	}
	for _, d := range descriptions {
		add(d, descriptionProbability)
	}
	if len(preds) == 0 {
		for _, tok := range FilenameTokens(img.Name()) {
			add(tok, filenameProbability)
		}
	}
	return preds, nil
}

// extractTerms reads the wanted tags. Unreadable or absent metadata yields no
// terms.
func extractTerms(img *imagefile.Image) (keywords, descriptions []string) {
	if len(img.Data) == 0 {
		return nil, nil
	}

	opts := imagemeta.Options{
		R:       bytes.NewReader(img.Data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := wantedTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			values := tagValueStrings(ti.Value)
			switch ti.Tag {
			case "Keywords", "Subject", "XPKeywords", "XPSubject":
				for _, v := range values {
					keywords = append(keywords, splitKeywordList(v)...)
				}
			default:
				descriptions = append(descriptions, values...)
			}
			return nil
		},
	}
	if format, ok := imageFormat(img.Path); ok {
		opts.ImageFormat = format
	}

	if _, err := imagemeta.Decode(opts); err != nil {
		return nil, nil
	}
	return keywords, descriptions
}

func imageFormat(path string) (imagemeta.ImageFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return imagemeta.JPEG, true
	case ".png":
		return imagemeta.PNG, true
	case ".tif", ".tiff":
		return imagemeta.TIFF, true
	case ".webp":
		return imagemeta.WebP, true
	default:
		return 0, false
	}
}

// tagValueStrings flattens a tag value. XMP bags arrive as []string or []any.
func tagValueStrings(v any) []string {
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

func splitKeywordList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FilenameTokens splits a file name into lower-case word tokens, dropping the
// extension, an upload UUID prefix, numbers, hex runs and camera prefixes.
func FilenameTokens(name string) []string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = uuidPrefix.ReplaceAllString(base, "")

	var tokens []string
	for _, raw := range tokenSplit.Split(base, -1) {
		tok := strings.ToLower(raw)
		if len(tok) < minTokenLength || stopTokens[tok] {
			continue
		}
		if len(tok) >= 8 && hexLike.MatchString(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
