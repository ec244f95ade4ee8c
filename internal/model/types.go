package model

import "github.com/pkg/errors"

// NumClasses is the length of the model output vector.
const NumClasses = 10

// Type reported by the model-info endpoint.
const Type = "CIFAR-10 CNN (ONNX)"

// Normalization describes the pixel value range the model was trained on.
const Normalization = "Range [-1, 1]"

// classNames is the fixed CIFAR-10 label set. The order is a contract with
// the model artifact: position i of the output vector scores classNames[i].
var classNames = []string{
	"airplane",
	"automobile",
	"bird",
	"cat",
	"deer",
	"dog",
	"frog",
	"horse",
	"ship",
	"truck",
}

var (
	// ErrModelLoad indicates the artifact could not be loaded. Fatal at
	// startup; the process must not begin serving.
	ErrModelLoad = errors.New("model load failed")
	// ErrModelNotLoaded indicates predict was called before a successful load.
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrPrediction indicates an inference runtime failure.
	ErrPrediction = errors.New("prediction failed")
)
