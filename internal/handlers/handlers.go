// Package handlers wires the HTTP surface to the classification pipeline.
package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mlserve/cifar-api/internal/imaging"
	"github.com/mlserve/cifar-api/internal/model"
	"github.com/mlserve/cifar-api/internal/predict"
)

// maxTopPredictions caps the allPredictions list in the classify response.
const maxTopPredictions = 5

// DefaultMaxUploadSize is the upload ceiling when none is configured.
const DefaultMaxUploadSize = 5 << 20

// Handler serves the classification endpoints. Safe for concurrent use: the
// only shared state is the classifier, which guards its own session.
type Handler struct {
	classifier    model.Classifier
	maxUploadSize int64
}

// NewHandler builds a Handler around the given classifier.
func NewHandler(classifier model.Classifier, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &Handler{
		classifier:    classifier,
		maxUploadSize: maxUploadSize,
	}
}

// Classify handles POST /classify: multipart upload in field "image",
// ranked class probabilities out.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeInvalidUpload, "use POST with a multipart image field")
		return
	}

	// upload boundary: size ceiling and declared type, before any decoding
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidUpload,
			fmt.Sprintf("could not parse upload; the limit is %d MB", h.maxUploadSize>>20))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidUpload,
			"no image file provided; use 'image' as the form field name")
		return
	}
	defer file.Close()

	mimetype := header.Header.Get("Content-Type")
	if mimetype != "" && !strings.HasPrefix(mimetype, "image/") {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidUpload,
			fmt.Sprintf("unsupported upload type %q; only images are accepted", mimetype))
		return
	}

	if !h.classifier.Ready() {
		writeError(w, http.StatusServiceUnavailable, ErrCodeModelUnavailable,
			"model is not loaded yet, try again later")
		return
	}

	// processing time covers decode through prediction
	start := time.Now()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("classify: reading upload %q: %v", header.Filename, err)
		writeError(w, http.StatusBadRequest, ErrCodeInvalidUpload, "could not read uploaded file")
		return
	}

	meta, err := imaging.Validate(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidImage, err.Error())
		return
	}

	tensor, err := imaging.Preprocess(data)
	if err != nil {
		log.Printf("classify: preprocessing %q: %v", header.Filename, err)
		writeError(w, http.StatusBadRequest, ErrCodePreprocessing, "could not preprocess image for the model")
		return
	}
	defer tensor.Release()

	probs, err := h.classifier.Predict(tensor)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("classify: prediction for %q: %v", header.Filename, err)
		if errors.Is(err, model.ErrModelNotLoaded) {
			writeError(w, http.StatusServiceUnavailable, ErrCodeModelUnavailable, "model is unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodePredictionFailed, "prediction failed")
		return
	}

	result, err := predict.Format(probs, h.classifier.Classes())
	if err != nil {
		log.Printf("classify: formatting result: %v", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "could not format prediction result")
		return
	}
	if len(result.AllPredictions) > maxTopPredictions {
		result.AllPredictions = result.AllPredictions[:maxTopPredictions]
	}

	writeJSON(w, http.StatusOK, ClassifyResponse{
		Success: true,
		Result:  result,
		Metadata: Metadata{
			OriginalImage: OriginalImage{
				Filename:   header.Filename,
				Size:       header.Size,
				Mimetype:   mimetype,
				Dimensions: fmt.Sprintf("%dx%d", meta.Width, meta.Height),
			},
			Processing: Processing{
				TimeMs:         elapsed,
				ModelInputSize: fmt.Sprintf("%dx%dx%d", imaging.InputSize, imaging.InputSize, imaging.Channels),
				Normalization:  model.Normalization,
			},
		},
		Timestamp: timestamp(),
	})
}

// ModelInfo handles GET /model-info: readiness plus the classifier contract.
// No preprocessing or prediction involved.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModelInfoResponse{
		ModelLoaded: h.classifier.Ready(),
		Classes:     h.classifier.Classes(),
		ModelInfo: ModelInfo{
			Type:             model.Type,
			InputShape:       h.classifier.InputShape(),
			OutputClasses:    model.NumClasses,
			Normalization:    model.Normalization,
			SupportedFormats: imaging.SupportedFormats(),
		},
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Timestamp:   timestamp(),
		ModelLoaded: h.classifier.Ready(),
	})
}

// Root handles GET /: a static API description.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "cifar-api",
		"description": "CIFAR-10 image classification service",
		"endpoints": map[string]string{
			"POST /classify":  "classify an uploaded image (multipart field 'image')",
			"GET /model-info": "model readiness, classes and input contract",
			"GET /health":     "service health",
		},
	})
}
