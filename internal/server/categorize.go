package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/metrics"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const unsupportedTypeMessage = "Error: File upload only supports the following filetypes - jpeg|jpg|png|gif|tiff|bmp|webp"

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// apiKey is one entry of the apiKeys form field.
type apiKey struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

// ParseAPIKeys decodes the apiKeys form field. Unknown provider names are
// kept as-is so the classifier reports them as unsupported. Entries without
// "enabled" are enabled. An empty field yields no credentials.
func ParseAPIKeys(raw string) ([]models.Credential, error) {
	if strings.TrimSpace(raw) == "" {
		return []models.Credential{}, nil
	}
	var entries []apiKey
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("invalid apiKeys JSON: %w", err)
	}

	creds := make([]models.Credential, 0, len(entries))
	for _, e := range entries {
		id, err := models.ParseProviderID(e.Provider)
		if err != nil {
			id = models.ProviderID(e.Provider)
		}
		cred := models.NewCredential(id, e.Key)
		if e.Enabled != nil {
			cred.Enabled = *e.Enabled
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

func (s *Server) categorize(c *gin.Context) {
	metrics.UploadsInFlight.Inc()
	defer metrics.UploadsInFlight.Dec()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error:   "File too large",
				Details: fmt.Sprintf("uploads are limited to %d bytes", s.opts.MaxUploadBytes),
			})
		case errors.Is(err, http.ErrMissingFile):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image file uploaded"})
		default:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid upload", Details: err.Error()})
		}
		return
	}

	if !s.accepted(header) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: unsupportedTypeMessage})
		return
	}

	creds, err := ParseAPIKeys(c.PostForm("apiKeys"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid apiKeys", Details: err.Error()})
		return
	}

	originalName := filepath.Base(header.Filename)
	log := s.logger.WithField(logging.FieldFile, originalName)
	log.Info("Received categorize request", logging.F(logging.FieldCount, len(creds)))
	for i, cred := range creds {
		log.Debug("Received API key",
			logging.F(logging.FieldAttempt, i+1),
			logging.F(logging.FieldProvider, cred.Provider),
			logging.F(logging.FieldKey, cred.MaskedSecret()))
	}
	if len(creds) == 0 {
		log.Warn("No API keys provided in request")
	}

	tempPath, err := s.uploadPath(header)
	if err != nil {
		log.WithError(err).Error("Failed to store upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to categorize image", Details: err.Error()})
		return
	}
	// Registered before saving so a partially written file is removed too.
	defer func() {
		if rmErr := os.Remove(tempPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.WithError(rmErr).Warn("Failed to clean up temp file")
		}
	}()
	if err := s.saveUpload(c, header, tempPath); err != nil {
		log.WithError(err).Error("Failed to store upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to categorize image", Details: err.Error()})
		return
	}

	res, err := s.classifier.ClassifyImage(c.Request.Context(), tempPath, creds)
	if err != nil {
		log.WithError(err).Error("Categorization error")
		metrics.RecordImage(models.FailedImageResult(originalName, err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to categorize image", Details: err.Error()})
		return
	}

	out := models.NewImageResult(originalName, res)
	metrics.RecordImage(out)
	c.JSON(http.StatusOK, out)
}

// accepted requires both the extension and the declared content type to be
// an accepted image type.
func (s *Server) accepted(header *multipart.FileHeader) bool {
	return imagefile.HasAcceptedExtension(header.Filename, s.opts.Extensions) &&
		imagefile.IsAcceptedContentType(header.Header.Get("Content-Type"))
}

// uploadPath creates the upload directory and returns a unique path in it.
func (s *Server) uploadPath(header *multipart.FileHeader) (string, error) {
	dir := s.opts.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return "", fmt.Errorf("error creating upload directory: %w", err)
	}
	return filepath.Join(dir, uuid.NewString()+"-"+filepath.Base(header.Filename)), nil
}

func (s *Server) saveUpload(c *gin.Context, header *multipart.FileHeader, dst string) error {
	save := s.save
	if save == nil {
		save = c.SaveUploadedFile
	}
	if err := save(header, dst); err != nil {
		return fmt.Errorf("error saving upload: %w", err)
	}
	return nil
}
