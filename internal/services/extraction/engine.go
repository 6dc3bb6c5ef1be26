package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"acolhimento/internal/domain"
	"acolhimento/internal/ports"
)

// Input errors, surfaced as client errors at the API boundary. Never retried.
var (
	ErrEmptyText   = errors.New("text must not be empty")
	ErrTextTooLong = errors.New("text exceeds maximum length")
)

const DefaultMaxTextLength = 2000

// Engine orchestrates prompt rendering, the LLM call and best-effort parsing
// of the model output into a candidate record.
type Engine struct {
	llm      ports.Generator
	renderer *Renderer
	maxLen   int
	log      *zap.Logger
}

func NewEngine(llm ports.Generator, renderer *Renderer, maxLen int, log *zap.Logger) *Engine {
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLength
	}
	return &Engine{llm: llm, renderer: renderer, maxLen: maxLen, log: log}
}

// Extract validates the input, invokes the LLM and parses its output.
// Malformed model output is a recoverable condition yielding an all-null
// record; only input violations and unrecovered transport failures error.
func (e *Engine) Extract(ctx context.Context, text string) (domain.CandidateRecord, error) {
	if strings.TrimSpace(text) == "" {
		return domain.CandidateRecord{}, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > e.maxLen {
		return domain.CandidateRecord{}, fmt.Errorf("%w (max %d characters)", ErrTextTooLong, e.maxLen)
	}

	e.log.Info("extraction_start", zap.Int("text_len", utf8.RuneCountInString(text)))

	prompt, err := e.renderer.RenderExtraction(text)
	if err != nil {
		return domain.CandidateRecord{}, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := e.llm.Generate(ctx, prompt, "")
	if err != nil {
		// Retry happened in the client; the caller owns the fallback decision.
		return domain.CandidateRecord{}, err
	}

	rec := e.parse(raw)
	if rec.Phone != nil {
		normalized := domain.NormalizePhone(*rec.Phone)
		rec.Phone = &normalized
	}

	e.log.Info("extraction_done", zap.Bool("empty", rec.Empty()))
	return rec, nil
}

// rawEntities accepts both the Portuguese keys the prompt requests and their
// English equivalents, since smaller models drift between the two.
type rawEntities struct {
	Nome        *string `json:"nome"`
	Name        *string `json:"name"`
	Telefone    *string `json:"telefone"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Motivo      *string `json:"motivo"`
	Reason      *string `json:"reason"`
	Data        *string `json:"data"`
	ContactDate *string `json:"contact_date"`
}

// parse takes the span from the first '{' to the last '}' and decodes it.
// No span or a failed decode collapses to the all-null record.
func (e *Engine) parse(raw string) domain.CandidateRecord {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		e.log.Warn("extraction_no_json_span", zap.String("preview", preview(raw)))
		return domain.CandidateRecord{}
	}

	var ent rawEntities
	if err := json.Unmarshal([]byte(raw[start:end+1]), &ent); err != nil {
		e.log.Warn("extraction_json_parse_failed", zap.String("preview", preview(raw)), zap.Error(err))
		return domain.CandidateRecord{}
	}

	return domain.CandidateRecord{
		Name:        pick(ent.Nome, ent.Name),
		Phone:       pick(ent.Telefone, ent.Phone),
		Email:       ent.Email,
		Reason:      pick(ent.Motivo, ent.Reason),
		ContactDate: pick(ent.Data, ent.ContactDate),
	}
}

// pick prefers the Portuguese-keyed value, which is what the prompt requests.
func pick(pt, en *string) *string {
	if pt != nil {
		return pt
	}
	return en
}

func preview(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
