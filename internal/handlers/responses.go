package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/mlserve/cifar-api/internal/predict"
)

// Error codes exposed to clients. Underlying causes stay server-side.
const (
	ErrCodeInvalidUpload    = "invalid_upload"
	ErrCodeInvalidImage     = "invalid_image"
	ErrCodePreprocessing    = "preprocessing_failed"
	ErrCodeModelUnavailable = "model_unavailable"
	ErrCodePredictionFailed = "prediction_failed"
	ErrCodeInternal         = "internal_error"
)

// ErrorResponse is the failure envelope for every endpoint.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ClassifyResponse is the success envelope of POST /classify.
type ClassifyResponse struct {
	Success   bool           `json:"success"`
	Result    predict.Result `json:"result"`
	Metadata  Metadata       `json:"metadata"`
	Timestamp string         `json:"timestamp"`
}

// Metadata carries request-scoped details alongside the prediction.
type Metadata struct {
	OriginalImage OriginalImage `json:"originalImage"`
	Processing    Processing    `json:"processing"`
}

// OriginalImage echoes what the client uploaded.
type OriginalImage struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Mimetype   string `json:"mimetype"`
	Dimensions string `json:"dimensions"`
}

// Processing reports how the upload was handled.
type Processing struct {
	TimeMs         int64  `json:"timeMs"`
	ModelInputSize string `json:"modelInputSize"`
	Normalization  string `json:"normalization"`
}

// ModelInfoResponse is the payload of GET /model-info.
type ModelInfoResponse struct {
	ModelLoaded bool      `json:"modelLoaded"`
	Classes     []string  `json:"classes"`
	ModelInfo   ModelInfo `json:"modelInfo"`
}

// ModelInfo describes the classifier contract.
type ModelInfo struct {
	Type             string   `json:"type"`
	InputShape       []int64  `json:"inputShape"`
	OutputClasses    int      `json:"outputClasses"`
	Normalization    string   `json:"normalization"`
	SupportedFormats []string `json:"supportedFormats"`
}

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	ModelLoaded bool   `json:"modelLoaded"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: timestamp(),
	})
}
