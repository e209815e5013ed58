package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"gopkg.in/yaml.v3"
)

// LabelThresholds represents warn/block cutoffs for one label.
type LabelThresholds struct {
	Warn  *float32 `yaml:"warn" json:"warn"`
	Block *float32 `yaml:"block" json:"block"`
}

// Classifier wraps the ONNX session and tokenizer for the local
// injection classifier bundle.
type Classifier struct {
	session    *ort.AdvancedSession
	tokenizer  *WordPieceTokenizer
	labels     []string
	thresholds map[string]LabelThresholds
	seqLen     int
	mode       string

	defaultWarn  float32
	defaultBlock float32

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu sync.Mutex
}

// LoadClassifier initializes the ONNX session, tokenizer, and thresholds
// from a model directory laid out as:
//
//	model.onnx
//	label_map.json
//	thresholds.yaml
//	tokenizer/vocab.txt
func LoadClassifier(modelDir string, seqLen int, warnThreshold, blockThreshold float32, mode string) (*Classifier, error) {
	if modelDir == "" {
		return nil, errors.New("modelDir is empty")
	}
	if seqLen <= 0 {
		seqLen = 256
	}

	libPath := resolveSharedLibraryPath(modelDir)
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(modelDir, "model.onnx")
	labelsPath := filepath.Join(modelDir, "label_map.json")
	thresholdsPath := filepath.Join(modelDir, "thresholds.yaml")
	vocabPath := filepath.Join(modelDir, "tokenizer", "vocab.txt")

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}
	if _, err := os.Stat(modelPath + ".data"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("model external data unreadable at %s.data: %w", modelPath, err)
	}

	labels, err := loadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	th, err := loadThresholds(thresholdsPath)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}

	tokenizer, err := LoadWordPieceTokenizer(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	outputShape := ort.NewShape(1, int64(len(labels)))
	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Classifier{
		session:       session,
		tokenizer:     tokenizer,
		labels:        labels,
		thresholds:    th,
		seqLen:        seqLen,
		mode:          normalizeMode(mode),
		defaultWarn:   warnThreshold,
		defaultBlock:  blockThreshold,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
	}, nil
}

func (c *Classifier) Status() Status {
	return Status{Enabled: true, Backend: "classifier", Mode: c.mode}
}

// Evaluate runs inference on the submitted text.
func (c *Classifier) Evaluate(_ context.Context, text string) (*Result, error) {
	if c == nil || c.session == nil || c.tokenizer == nil {
		return nil, errors.New("screening classifier not initialized")
	}

	inputIDs, attn := c.tokenizer.Encode(text, c.seqLen)

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.inputIDs.GetData(), inputIDs)
	copy(c.attentionMask.GetData(), attn)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	raw := c.output.GetData()
	scores := make(map[string]float32, len(c.labels))
	var flags []string

	for i, logit := range raw {
		if i >= len(c.labels) {
			break
		}
		label := c.labels[i]
		score := float32(1.0 / (1.0 + math.Exp(-float64(logit))))
		scores[label] = score

		warn, block := c.cutoffsFor(label)
		if score >= block {
			flags = append(flags, label+"_high")
		} else if score >= warn {
			flags = append(flags, label+"_medium")
		}
	}

	return &Result{
		Scores:  scores,
		Flags:   flags,
		Warned:  len(flags) > 0,
		Blocked: c.mode == ModeBlock && hasHighFlag(flags),
	}, nil
}

// cutoffsFor prefers the bundle thresholds for a label and falls back
// to the configured service-wide defaults.
func (c *Classifier) cutoffsFor(label string) (warn, block float32) {
	warn, block = c.defaultWarn, c.defaultBlock
	if th, ok := c.thresholds[label]; ok {
		if th.Warn != nil {
			warn = *th.Warn
		}
		if th.Block != nil {
			block = *th.Block
		}
	}
	if warn <= 0 {
		warn = 0.7
	}
	if block <= 0 {
		block = 0.9
	}
	return warn, block
}

func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		return arr, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	out := make([]string, len(m))
	for k, v := range m {
		idx, convErr := strconv.Atoi(k)
		if convErr != nil {
			return nil, fmt.Errorf("invalid label index %q: %w", k, convErr)
		}
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("label index %d out of range", idx)
		}
		out[idx] = v
	}
	return out, nil
}

func loadThresholds(path string) (map[string]LabelThresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Thresholds map[string]LabelThresholds `yaml:"thresholds"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Thresholds == nil {
		wrapper.Thresholds = make(map[string]LabelThresholds)
	}
	return wrapper.Thresholds, nil
}

// resolveSharedLibraryPath attempts to locate a platform-specific onnxruntime shared library.
// If ONNXRUNTIME_SHARED_LIBRARY_PATH is set, it wins; otherwise we probe common names/locations.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
