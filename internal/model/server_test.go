package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlserve/cifar-api/internal/imaging"
)

func TestClassesReturnsDefensiveCopy(t *testing.T) {
	s := &Server{}

	classes := s.Classes()
	require.Len(t, classes, NumClasses)
	assert.Equal(t, "airplane", classes[0])

	classes[0] = "mutated"
	assert.Equal(t, "airplane", s.Classes()[0])
}

func TestClassOrderIsFixed(t *testing.T) {
	s := &Server{}
	assert.Equal(t, []string{
		"airplane", "automobile", "bird", "cat", "deer",
		"dog", "frog", "horse", "ship", "truck",
	}, s.Classes())
}

func TestPredictBeforeLoad(t *testing.T) {
	s := &Server{}

	_, err := s.Predict(&imaging.Tensor{Data: make([]float32, 32*32*3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestReadyOnNilServer(t *testing.T) {
	var s *Server
	assert.False(t, s.Ready())
}

func TestInputShape(t *testing.T) {
	s := &Server{}
	assert.Equal(t, []int64{32, 32, 3}, s.InputShape())
}

func TestLoadFailureIsFatalError(t *testing.T) {
	_, err := New("testdata/does-not-exist.onnx")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelLoad)
}
