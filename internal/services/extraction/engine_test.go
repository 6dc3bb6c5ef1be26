package extraction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"acolhimento/internal/domain"
)

type fakeGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt, _ string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestEngine(gen *fakeGenerator) *Engine {
	return NewEngine(gen, NewRenderer(), 0, zap.NewNop())
}

func TestExtractRejectsEmptyText(t *testing.T) {
	gen := &fakeGenerator{}
	e := newTestEngine(gen)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := e.Extract(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyText, "input %q", text)
	}
	assert.Zero(t, gen.calls, "input validation must happen before any network call")
}

func TestExtractRejectsTooLongText(t *testing.T) {
	gen := &fakeGenerator{}
	e := newTestEngine(gen)

	_, err := e.Extract(context.Background(), strings.Repeat("a", 2001))
	assert.ErrorIs(t, err, ErrTextTooLong)
	assert.Zero(t, gen.calls)

	// Exactly at the limit is fine.
	gen2 := &fakeGenerator{response: "no json here"}
	_, err = newTestEngine(gen2).Extract(context.Background(), strings.Repeat("a", 2000))
	assert.NoError(t, err)
}

func TestExtractPropagatesTransportError(t *testing.T) {
	sentinel := assert.AnError
	gen := &fakeGenerator{err: sentinel}

	_, err := newTestEngine(gen).Extract(context.Background(), "Maria ligou hoje")
	assert.ErrorIs(t, err, sentinel)
}

func TestExtractPromptEmbedsTextVerbatim(t *testing.T) {
	gen := &fakeGenerator{response: "{}"}
	text := "Novo contato: Maria Silva, telefone 11 99999-8888, motivo: apoio emocional"

	_, err := newTestEngine(gen).Extract(context.Background(), text)
	require.NoError(t, err)
	assert.Contains(t, gen.lastPrompt, text)
	assert.Contains(t, gen.lastPrompt, "nome")
	assert.Contains(t, gen.lastPrompt, "JSON")
}

func TestExtractParsesPortugueseKeys(t *testing.T) {
	gen := &fakeGenerator{response: `{"nome": "João", "telefone": "11-8888-7777"}`}

	rec, err := newTestEngine(gen).Extract(context.Background(), "João, 11-8888-7777")
	require.NoError(t, err)
	require.NotNil(t, rec.Name)
	assert.Equal(t, "João", *rec.Name)
	require.NotNil(t, rec.Phone)
	assert.Regexp(t, `^\d{2}-\d{4}-\d{4}$`, *rec.Phone)
	assert.Nil(t, rec.Email)
	assert.Nil(t, rec.Reason)
	assert.Nil(t, rec.ContactDate)
}

func TestExtractParsesEnglishKeys(t *testing.T) {
	gen := &fakeGenerator{response: `{"name": "Maria Silva", "phone": "(11) 99999-8888", "reason": "apoio emocional", "contact_date": "2024-01-01"}`}

	rec, err := newTestEngine(gen).Extract(context.Background(), "texto livre")
	require.NoError(t, err)
	require.NotNil(t, rec.Name)
	assert.Equal(t, "Maria Silva", *rec.Name)
	require.NotNil(t, rec.Phone)
	assert.Equal(t, "11-99999-8888", *rec.Phone)
	require.NotNil(t, rec.Reason)
	assert.Equal(t, "apoio emocional", *rec.Reason)
	require.NotNil(t, rec.ContactDate)
	assert.Equal(t, "2024-01-01", *rec.ContactDate)
}

func TestExtractJSONSurroundedByProse(t *testing.T) {
	gen := &fakeGenerator{response: "Aqui está o resultado:\n{\"nome\": \"Ana\", \"telefone\": null}\nEspero ter ajudado!"}

	rec, err := newTestEngine(gen).Extract(context.Background(), "Ana ligou")
	require.NoError(t, err)
	require.NotNil(t, rec.Name)
	assert.Equal(t, "Ana", *rec.Name)
	assert.Nil(t, rec.Phone)
}

func TestExtractNoJSONSpanYieldsAllNull(t *testing.T) {
	gen := &fakeGenerator{response: "Desculpe, não consegui extrair nada."}

	rec, err := newTestEngine(gen).Extract(context.Background(), "texto qualquer")
	require.NoError(t, err)
	assert.True(t, rec.Empty())
}

func TestExtractMalformedJSONYieldsAllNull(t *testing.T) {
	gen := &fakeGenerator{response: `{"nome": "Maria", "telefone": `}

	rec, err := newTestEngine(gen).Extract(context.Background(), "texto")
	require.NoError(t, err)
	assert.True(t, rec.Empty())
}

func TestRenderValidationSerializesRecord(t *testing.T) {
	name := "Maria Silva"
	out, err := NewRenderer().RenderValidation(domain.CandidateRecord{Name: &name})
	require.NoError(t, err)
	assert.Contains(t, out, "Maria Silva")
	assert.Contains(t, out, "JSON")
}
