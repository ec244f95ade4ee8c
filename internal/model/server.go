package model

import (
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/mlserve/cifar-api/internal/imaging"
)

// Classifier is the abstract inference capability. The concrete runtime can
// be swapped without touching preprocessing or formatting logic.
type Classifier interface {
	// Predict runs the tensor through the model and returns the raw class
	// score vector. Ownership of the input tensor stays with the caller.
	Predict(t *imaging.Tensor) ([]float32, error)
	// Ready reports whether the model artifact is loaded.
	Ready() bool
	// Classes returns the ordered class-name list.
	Classes() []string
	// InputShape returns the per-image input dimensions [H, W, C].
	InputShape() []int64
}

// Server runs a pretrained CIFAR-10 classifier through onnxruntime. The
// session is bound to pre-allocated input/output tensors, so Run calls are
// serialized behind a mutex.
type Server struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	loaded       bool
}

var _ Classifier = (*Server)(nil)

// New loads the model artifact from modelPath. Construct once at startup; a
// failure here means the process must not serve.
func New(modelPath string) (*Server, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, errors.Wrapf(ErrModelLoad, "initialize ONNX environment: %v", err)
	}

	inputShape := ort.NewShape(1, imaging.InputSize, imaging.InputSize, imaging.Channels)
	outputShape := ort.NewShape(1, NumClasses)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, errors.Wrapf(ErrModelLoad, "create input tensor: %v", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrapf(ErrModelLoad, "create output tensor: %v", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrapf(ErrModelLoad, "create ONNX session from %s: %v", modelPath, err)
	}

	return &Server{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		loaded:       true,
	}, nil
}

// Ready reports whether the model is loaded and able to serve predictions.
func (s *Server) Ready() bool {
	return s != nil && s.loaded
}

// Classes returns a copy of the class-name list; callers cannot mutate the
// model's own ordering through it.
func (s *Server) Classes() []string {
	out := make([]string, len(classNames))
	copy(out, classNames)
	return out
}

// InputShape returns the per-image input dimensions.
func (s *Server) InputShape() []int64 {
	return []int64{imaging.InputSize, imaging.InputSize, imaging.Channels}
}

// Predict runs inference on the normalized tensor and returns a copy of the
// raw output vector. Scores are reported as the model emits them, without
// renormalization.
func (s *Server) Predict(t *imaging.Tensor) ([]float32, error) {
	if !s.Ready() {
		return nil, ErrModelNotLoaded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.inputTensor.GetData(), t.Data)

	if err := s.session.Run(); err != nil {
		return nil, errors.Wrapf(ErrPrediction, "inference: %v", err)
	}

	out := make([]float32, NumClasses)
	copy(out, s.outputTensor.GetData())
	return out, nil
}

// Close releases the session and its tensors. The server is unusable after.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
		s.inputTensor = nil
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
		s.outputTensor = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	ort.DestroyEnvironment()
}
