package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fleveque/stylist-service/internal/llm"
	"github.com/fleveque/stylist-service/internal/model"
	"github.com/fleveque/stylist-service/internal/provider"
)

type fakeExtractor struct {
	raw     json.RawMessage
	err     error
	calls   int
	lastReq llm.ExtractionRequest
}

func (f *fakeExtractor) ProviderName() string { return "fake" }
func (f *fakeExtractor) ModelName() string     { return "fake-extract" }

func (f *fakeExtractor) ExtractProducts(_ context.Context, req llm.ExtractionRequest) (json.RawMessage, error) {
	f.calls++
	f.lastReq = req
	return f.raw, f.err
}

type fakeSource struct {
	content string
	err     error
	calls   int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context, q provider.Query) (string, error) {
	f.calls++
	return f.content, f.err
}

type fakeWriter struct {
	advice string
	err    error
	calls  int
}

func (f *fakeWriter) ProviderName() string { return "fake" }
func (f *fakeWriter) ModelName() string     { return "fake-advice" }

func (f *fakeWriter) WriteAdvice(context.Context, model.AdviceRequest) (string, error) {
	f.calls++
	return f.advice, f.err
}

type fakeRenderer struct {
	image      *llm.Image
	err        error
	calls      int
	lastAdvice string
	lastItem   *llm.Image
}

func (f *fakeRenderer) ProviderName() string { return "fake" }
func (f *fakeRenderer) ModelName() string     { return "fake-image" }

func (f *fakeRenderer) RenderOutfit(_ context.Context, advice string, item *llm.Image) (*llm.Image, error) {
	f.calls++
	f.lastAdvice = advice
	f.lastItem = item
	return f.image, f.err
}

type fakeLoader struct {
	image *llm.Image
	err   error
	calls int
}

func (f *fakeLoader) Load(context.Context, string) (*llm.Image, error) {
	f.calls++
	return f.image, f.err
}

type fakeCallRepo struct {
	mu    sync.Mutex
	calls []model.LLMCall
}

func (f *fakeCallRepo) Create(_ context.Context, call *model.LLMCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call.ID = int64(len(f.calls) + 1)
	f.calls = append(f.calls, *call)
	return nil
}

func (f *fakeCallRepo) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.calls)), nil
}

func (f *fakeCallRepo) StatsByStep(context.Context, time.Time) ([]model.LLMCallStats, error) {
	return nil, nil
}

func (f *fakeCallRepo) ListRecent(context.Context, int) ([]model.LLMCall, error) {
	return nil, nil
}
