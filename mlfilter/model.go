package mlfilter

import (
	"fmt"
	"os"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"
)

// Model is the ONNX-backed Scorer. The session holds one reusable input
// tensor of shape (1, FeatureCount) and one output tensor of shape (1, 2)
// carrying [P(loss), P(win)].
type Model struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// Initialize points the onnxruntime binding at the shared library and
// initializes the environment. Safe to call once at startup before Load.
func Initialize() error {
	ort.SetSharedLibraryPath(sharedLibraryPath())
	return ort.InitializeEnvironment()
}

// sharedLibraryPath resolves the onnxruntime shared library: the
// ONNXRUNTIME_LIB environment variable wins, otherwise the platform
// default.
func sharedLibraryPath() string {
	if p := os.Getenv("ONNXRUNTIME_LIB"); p != "" {
		return p
	}
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "/usr/lib/libonnxruntime.so"
	}
}

// Load opens the scoring artifact. A missing or unreadable artifact is a
// startup-fatal condition for the caller: the engine must refuse to trade
// unfiltered rather than degrade silently.
func Load(modelPath string) (*Model, error) {
	inputTensor, err := ort.NewTensor(ort.NewShape(1, FeatureCount), make([]float32, FeatureCount))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"probabilities"},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("open model %s: %w", modelPath, err)
	}

	return &Model{session: session, input: inputTensor, output: outputTensor}, nil
}

// Score runs one inference and returns the favorable-class probability.
func (m *Model) Score(features []float32) (float64, error) {
	if len(features) != FeatureCount {
		return 0, fmt.Errorf("expected %d features, got %d", FeatureCount, len(features))
	}
	copy(m.input.GetData(), features)

	if err := m.session.Run(); err != nil {
		return 0, fmt.Errorf("inference: %w", err)
	}

	out := m.output.GetData()
	if len(out) < 2 {
		return 0, fmt.Errorf("unexpected model output width %d", len(out))
	}
	return float64(out[1]), nil
}

// Close destroys the session and its tensors.
func (m *Model) Close() error {
	if m.session != nil {
		m.session.Destroy()
	}
	if m.input != nil {
		m.input.Destroy()
	}
	if m.output != nil {
		m.output.Destroy()
	}
	return nil
}
