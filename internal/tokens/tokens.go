// Package tokens counts LLM tokens in exported text.
package tokens

import (
	"fmt"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"github.com/jadenpxrk/codeshelf/internal/logging"
)

// Counter counts tokens in text.
type Counter interface {
	CountTokens(text string) int
	Close()
}

// Kinds of tokenizer.
const (
	KindTiktoken    = "tiktoken"
	KindHuggingFace = "huggingface"
)

// cl100k_base is bundled by every release of the offline loader.
const defaultTiktokenModel = "gpt-4"

// Config selects a tokenizer.
type Config struct {
	Kind  string
	Model string
	// File is a local tokenizer.json, required for KindHuggingFace.
	File string
}

func init() {
	// BPE ranks ship with the binary; nothing is downloaded.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// New builds the Counter described by cfg.
func New(cfg Config) (Counter, error) {
	logging.Debug("initializing tokenizer",
		logging.String("kind", cfg.Kind),
		logging.String("model", cfg.Model),
		logging.String("file", cfg.File))

	switch strings.ToLower(cfg.Kind) {
	case "", KindTiktoken:
		return newTiktoken(cfg.Model)
	case KindHuggingFace:
		return newHuggingFace(cfg.File)
	default:
		return nil, fmt.Errorf("unsupported tokenizer type: %s. Use 'tiktoken' or 'huggingface'", cfg.Kind)
	}
}

type tiktokenCounter struct {
	ttk *tiktoken.Tiktoken
}

func newTiktoken(model string) (Counter, error) {
	if model == "" {
		model = defaultTiktokenModel
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logging.Warn("tiktoken model not found, using default",
			logging.String("model", model),
			logging.String("default", defaultTiktokenModel),
			logging.Err(err))
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding for default model '%s': %w", defaultTiktokenModel, err)
		}
	}
	return &tiktokenCounter{ttk: tke}, nil
}

func (c *tiktokenCounter) CountTokens(text string) int {
	return len(c.ttk.EncodeOrdinary(text))
}

func (c *tiktokenCounter) Close() {}

type hfCounter struct {
	htk *hf.Tokenizer
}

func newHuggingFace(file string) (Counter, error) {
	if file == "" {
		return nil, fmt.Errorf("huggingface tokenizer needs a local tokenizer file")
	}
	htk, err := pretrained.FromFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer from file %s: %w", file, err)
	}
	return &hfCounter{htk: htk}, nil
}

func (c *hfCounter) CountTokens(text string) int {
	en, err := c.htk.EncodeSingle(text)
	if err != nil {
		logging.Warn("HF tokenizer failed to encode text", logging.Err(err))
		return 0
	}
	return len(en.Tokens)
}

func (c *hfCounter) Close() {}

type job struct {
	index int
	text  string
}

// CountAll counts tokens in every text using up to workers goroutines and
// returns the counts in input order.
func CountAll(c Counter, texts []string, workers int) []int {
	counts := make([]int, len(texts))
	if workers <= 1 || len(texts) <= 1 {
		for i, text := range texts {
			counts[i] = c.CountTokens(text)
		}
		return counts
	}

	jobs := make(chan job, len(texts))
	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(texts)); w++ {
		wg.Add(1)
		go tokenWorker(c, jobs, counts, &wg)
	}
	for i, text := range texts {
		jobs <- job{index: i, text: text}
	}
	close(jobs)
	wg.Wait()
	return counts
}

func tokenWorker(c Counter, jobs <-chan job, counts []int, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		if j.text == "" {
			continue
		}
		counts[j.index] = c.CountTokens(j.text)
	}
}

// Sum adds up counts.
func Sum(counts []int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
