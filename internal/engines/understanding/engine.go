package understanding

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms/openai"
	langChainPrompts "github.com/tmc/langchaingo/prompts"

	"go-skillagent/internal/orchestrator"
	"go-skillagent/pkg/data"
	"go-skillagent/pkg/models"
	"go-skillagent/pkg/prompts"
)

var (
	AssessPrompt  = langChainPrompts.NewPromptTemplate(prompts.AssessGoal, []string{"Message", "History", "Context", "Skills"})
	ExtractPrompt = langChainPrompts.NewPromptTemplate(prompts.ExtractResponse, []string{"Question", "Answer", "Context"})
)

// Engine is the LLM-backed understanding engine. It owns the question budget:
// once maxQuestions clarifications have been asked it stops asking and reports
// the goal understood with whatever context has accumulated.
type Engine struct {
	assessChain  chains.Chain
	extractChain chains.Chain
	maxQuestions int
	threshold    float64

	mu             sync.Mutex
	questionsAsked int
}

var _ orchestrator.UnderstandingEngine = (*Engine)(nil)

// New builds an engine on the default OpenAI chat model.
func New(maxQuestions int, threshold float64) (*Engine, error) {
	llm, err := openai.New()
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return NewWithChains(
		chains.NewLLMChain(llm, AssessPrompt),
		chains.NewLLMChain(llm, ExtractPrompt),
		maxQuestions, threshold,
	), nil
}

// NewWithChains wires explicit chains; tests inject fakes here.
func NewWithChains(assess, extract chains.Chain, maxQuestions int, threshold float64) *Engine {
	if maxQuestions <= 0 {
		maxQuestions = models.DefaultMaxQuestions
	}
	if threshold <= 0 {
		threshold = models.DefaultConfidenceThreshold
	}
	return &Engine{
		assessChain:  assess,
		extractChain: extract,
		maxQuestions: maxQuestions,
		threshold:    threshold,
	}
}

type assessAnswer struct {
	Understood       bool           `json:"understood"`
	Confidence       float64        `json:"confidence"`
	ExtractedContext map[string]any `json:"extractedContext"`
	MissingInfo      []string       `json:"missingInfo"`
	Question         string         `json:"question"`
}

// Assess judges one user message against the accumulated conversation.
func (e *Engine) Assess(ctx context.Context, in orchestrator.AssessInput) (*orchestrator.Assessment, error) {
	completion, err := chains.Call(ctx, e.assessChain, map[string]any{
		"Message": in.Message,
		"History": marshalHistory(in.History),
		"Context": marshalJSON(in.Context),
		"Skills":  marshalJSON(in.AvailableSkills),
	})
	if err != nil {
		return nil, fmt.Errorf("call: %w", err)
	}

	assessment, err := e.parseAssessment(completionText(completion))
	if err != nil {
		return nil, err
	}
	e.applyBudget(assessment)
	return assessment, nil
}

func (e *Engine) parseAssessment(text string) (*orchestrator.Assessment, error) {
	match, err := data.SanitizeAnswer(text)
	if err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}
	parsed := assessAnswer{}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return &orchestrator.Assessment{
		Understood:       parsed.Understood && parsed.Confidence >= e.threshold,
		Confidence:       parsed.Confidence,
		ExtractedContext: parsed.ExtractedContext,
		MissingInfo:      parsed.MissingInfo,
		Question:         parsed.Question,
	}, nil
}

// applyBudget spends one question per non-converged assessment and forces
// convergence once the budget is gone.
func (e *Engine) applyBudget(assessment *orchestrator.Assessment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if assessment.Understood {
		return
	}
	if e.questionsAsked >= e.maxQuestions {
		log.Warn().Int("asked", e.questionsAsked).Msg("question budget exhausted, proceeding with what we have")
		assessment.Understood = true
		return
	}
	e.questionsAsked++
}

// ExtractFromResponse pulls structured keys out of a free-text answer to a
// clarifying question. A completion that cannot be parsed degrades to the raw
// answer under a single key rather than failing the turn.
func (e *Engine) ExtractFromResponse(ctx context.Context, question *models.AgentMessage, answer string, context map[string]any) (map[string]any, error) {
	completion, err := chains.Call(ctx, e.extractChain, map[string]any{
		"Question": question.Content,
		"Answer":   answer,
		"Context":  marshalJSON(context),
	})
	if err != nil {
		return nil, fmt.Errorf("call: %w", err)
	}

	return parseExtraction(completionText(completion), answer), nil
}

func parseExtraction(text, answer string) map[string]any {
	match, err := data.SanitizeAnswer(text)
	if err != nil {
		return map[string]any{"answer": answer}
	}
	extracted := map[string]any{}
	if err := json.Unmarshal([]byte(match), &extracted); err != nil {
		return map[string]any{"answer": answer}
	}
	return extracted
}

// BuildGoal folds the original request and every extracted detail into the
// goal. The statement is the first user message; the context snapshot is what
// planning sees.
func (e *Engine) BuildGoal(firstMessage string, assessments []*orchestrator.Assessment, context map[string]any) *models.AgentGoal {
	snapshot := make(map[string]any, len(context))
	for k, v := range context {
		snapshot[k] = v
	}
	for _, a := range assessments {
		for k, v := range a.ExtractedContext {
			snapshot[k] = v
		}
	}
	return &models.AgentGoal{Statement: firstMessage, Context: snapshot}
}

// CreateQuestionMessage renders the assessment's clarifying question.
func (e *Engine) CreateQuestionMessage(a *orchestrator.Assessment) *models.AgentMessage {
	question := a.Question
	if question == "" {
		question = "Could you tell me a bit more about what you'd like me to do?"
	}
	return &models.AgentMessage{
		ID:        uuid.New().String(),
		Type:      models.MessageTypeQuestion,
		Content:   question,
		Timestamp: time.Now(),
		Payload:   models.QuestionPayload{Question: question, MissingInfo: a.MissingInfo},
	}
}

// Reset clears the question budget for a new session.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.questionsAsked = 0
}

func completionText(completion map[string]any) string {
	text, _ := completion["text"].(string)
	return text
}

func marshalJSON(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(out)
}

type historyEntry struct {
	Type    models.MessageType `json:"type"`
	Content string             `json:"content"`
}

func marshalHistory(history []*models.AgentMessage) string {
	entries := make([]historyEntry, 0, len(history))
	for _, m := range history {
		entries = append(entries, historyEntry{Type: m.Type, Content: m.Content})
	}
	return marshalJSON(entries)
}
