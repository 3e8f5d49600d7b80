package qa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OrtConfig describes an ONNX export of a BERT-style question answering model.
type OrtConfig struct {
	SharedLibrary string
	ModelPath     string
	// InputNames are fed ids, mask and segment ids in that order. Two names
	// skip the segment ids, one name feeds ids only.
	InputNames  []string
	OutputNames []string
}

var (
	ortEnvMu   sync.Mutex
	ortEnvRefs int
)

// OrtModel runs start/end scoring through ONNX Runtime.
type OrtModel struct {
	cfg     OrtConfig
	session *ort.DynamicAdvancedSession
}

// NewOrtModel initializes the ONNX Runtime environment on first use and opens
// a session for cfg.ModelPath.
func NewOrtModel(cfg OrtConfig) (*OrtModel, error) {
	if cfg.ModelPath == "" {
		return nil, ErrModelNotConfigured
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("stat model %s: %w", filepath.Base(cfg.ModelPath), err)
	}
	if len(cfg.InputNames) == 0 {
		cfg.InputNames = []string{"input_ids", "attention_mask", "token_type_ids"}
	}
	if len(cfg.InputNames) > 3 {
		return nil, fmt.Errorf("expected at most 3 model inputs, got %d", len(cfg.InputNames))
	}
	if len(cfg.OutputNames) == 0 {
		cfg.OutputNames = []string{"start_logits", "end_logits"}
	}
	if len(cfg.OutputNames) != 2 {
		return nil, fmt.Errorf("expected 2 model outputs, got %d", len(cfg.OutputNames))
	}
	if err := acquireOrtEnv(cfg.SharedLibrary); err != nil {
		return nil, err
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, cfg.InputNames, cfg.OutputNames, nil)
	if err != nil {
		releaseOrtEnv()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &OrtModel{cfg: cfg, session: session}, nil
}

// ModelID identifies the loaded model file.
func (m *OrtModel) ModelID() string {
	return filepath.Base(m.cfg.ModelPath)
}

// Scores runs the model once for in and returns per-position start and end
// logits.
func (m *OrtModel) Scores(ctx context.Context, in *Input) ([]float32, []float32, error) {
	if m == nil || m.session == nil {
		return nil, nil, errors.New("onnx model is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	n := int64(len(in.IDs))
	shape := ort.NewShape(1, n)

	feeds := [][]int64{in.IDs, in.Mask, in.TypeIDs}[:len(m.cfg.InputNames)]
	inputs := make([]ort.Value, 0, len(feeds))
	defer func() {
		for _, v := range inputs {
			v.Destroy()
		}
	}()
	for _, data := range feeds {
		t, err := ort.NewTensor(shape, append([]int64(nil), data...))
		if err != nil {
			return nil, nil, fmt.Errorf("create input tensor: %w", err)
		}
		inputs = append(inputs, t)
	}

	startT, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return nil, nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer startT.Destroy()
	endT, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return nil, nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer endT.Destroy()

	if err := m.session.Run(inputs, []ort.Value{startT, endT}); err != nil {
		return nil, nil, fmt.Errorf("run onnx session: %w", err)
	}
	return cloneScores(startT.GetData()), cloneScores(endT.GetData()), nil
}

// Close releases the session and, for the last model, the environment.
func (m *OrtModel) Close() error {
	if m == nil || m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	releaseOrtEnv()
	return err
}

func acquireOrtEnv(lib string) error {
	ortEnvMu.Lock()
	defer ortEnvMu.Unlock()
	if ortEnvRefs == 0 && !ort.IsInitialized() {
		if lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	ortEnvRefs++
	return nil
}

func releaseOrtEnv() {
	ortEnvMu.Lock()
	defer ortEnvMu.Unlock()
	if ortEnvRefs == 0 {
		return
	}
	ortEnvRefs--
	if ortEnvRefs == 0 && ort.IsInitialized() {
		_ = ort.DestroyEnvironment()
	}
}

func cloneScores(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
