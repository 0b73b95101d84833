// Package inference - Thin ONNX session plumbing that feeds the filter.
package inference

import (
	"image"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-filter/filter"
)

// Config describes a detection model whose raw output feeds the filter.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// InputName and OutputName are the model's tensor names.
	InputName  string `json:"input_name" yaml:"input_name"`
	OutputName string `json:"output_name" yaml:"output_name"`
	// InputSize is the square model input resolution (e.g. 640).
	InputSize int `json:"input_size" yaml:"input_size"`
	// MaxBoxes is the number of candidate rows the model emits (e.g. 8400).
	MaxBoxes int `json:"max_boxes" yaml:"max_boxes"`
	// NumClasses is the per-row class count of the output tensor.
	NumClasses int `json:"num_classes" yaml:"num_classes"`
	// Filter holds the parameters applied to the decoded output.
	Filter filter.Config `json:"filter" yaml:"filter"`
}

// Session wraps an onnxruntime session with pre-allocated input and output
// tensors. It is not safe for concurrent use; run one Session per goroutine.
type Session struct {
	cfg     Config
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewSession loads the model and allocates its tensors. The onnxruntime
// environment must already be initialized.
//
// Arguments:
//   - cfg: Model and filtering configuration.
//
// Returns:
//   - *Session: A ready session; call Close when done.
//   - error: Tensor or session creation failure.
func NewSession(cfg Config) (*Session, error) {
	if cfg.InputSize <= 0 || cfg.MaxBoxes <= 0 || cfg.NumClasses <= 0 {
		return nil, errors.Errorf(
			"input size, max boxes and class count must be positive, got %d, %d, %d",
			cfg.InputSize, cfg.MaxBoxes, cfg.NumClasses)
	}

	input, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, 3, int64(cfg.InputSize), int64(cfg.InputSize)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}
	output, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, int64(cfg.MaxBoxes), int64(4+cfg.NumClasses)))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "failed to create output tensor")
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "failed to create ONNX session")
	}

	return &Session{cfg: cfg, session: session, input: input, output: output}, nil
}

// Detect runs the model on img and filters the decoded output.
//
// Returns:
//   - *filter.Detections: Exactly cfg.Filter.MaxDetections rows in model
//     input coordinates.
//   - error: Preprocessing, inference or filtering failure.
func (s *Session) Detect(img image.Image) (*filter.Detections, error) {
	if err := PrepareInput(img, s.input, s.cfg.InputSize); err != nil {
		return nil, err
	}
	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}
	boxes, scores, err := DecodeOutput(s.output.GetData(), s.cfg.NumClasses)
	if err != nil {
		return nil, err
	}
	return filter.Filter(boxes, scores, nil, s.cfg.Filter)
}

// Close releases the resources associated with the Session.
func (s *Session) Close() {
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}
