package extraction

import (
	"encoding/json"
	"strings"
	"text/template"

	"acolhimento/internal/domain"
)

// Prompts are tuned for llama3:8b; keep the field list and the "JSON only"
// directive in sync with the parser's expected keys.
const extractionPrompt = `Você é um assistente especializado em extrair informações estruturadas de texto livre.

Tarefa: Extraia as seguintes entidades do texto fornecido:
- nome: Nome completo da pessoa
- telefone: Número de telefone no formato brasileiro XX-XXXX-XXXX ou XX-XXXXX-XXXX
- email: Email válido (opcional, deve conter @)
- motivo: Motivo do contato (apoio emocional, orientação jurídica, etc.)
- data: Data do contato se mencionada (formato YYYY-MM-DD)

Texto de entrada:
{{.Text}}

Instruções:
1. Extraia APENAS as entidades explicitamente mencionadas no texto
2. Se uma entidade não for mencionada, retorne null
3. Telefone deve estar no formato brasileiro: XX-XXXX-XXXX (sem parênteses)
4. Email deve ser válido (contendo @)
5. Retorne APENAS JSON válido, sem markdown, sem explicações

Formato de saída (JSON):
{
  "nome": "...",
  "telefone": "...",
  "email": "..." ou null,
  "motivo": "...",
  "data": "..." ou null
}
`

const validationPrompt = `Você é um assistente que valida dados de contato extraídos.

Dados extraídos:
{{.Data}}

Verifique cada campo contra as regras:
- nome: pelo menos 2 caracteres
- telefone: formato XX-XXXX-XXXX ou XX-XXXXX-XXXX
- email: formato válido com @ (opcional)
- motivo: pelo menos 3 caracteres
- data: formato YYYY-MM-DD (opcional)

Retorne APENAS JSON válido com os campos corrigidos, sem explicações.
`

// Renderer builds the instruction text sent to the LLM.
type Renderer struct {
	extraction *template.Template
	validation *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		extraction: template.Must(template.New("extraction").Parse(extractionPrompt)),
		validation: template.Must(template.New("validation").Parse(validationPrompt)),
	}
}

// RenderExtraction embeds the user text verbatim in the extraction prompt.
// Length and emptiness checks are the engine's job, not the renderer's.
func (r *Renderer) RenderExtraction(text string) (string, error) {
	var b strings.Builder
	if err := r.extraction.Execute(&b, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderValidation serializes a record for a validation-oriented prompt.
// The pipeline does not consume this output; the validate endpoint runs the
// field validator directly without contacting the LLM.
func (r *Renderer) RenderValidation(rec domain.CandidateRecord) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := r.validation.Execute(&b, struct{ Data string }{Data: string(data)}); err != nil {
		return "", err
	}
	return b.String(), nil
}
