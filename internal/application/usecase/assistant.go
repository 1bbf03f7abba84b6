package usecase

import (
	"context"
	"fmt"
	"strings"

	"careermate/internal/domain"
)

const chatPromptTemplate = `You are a helpful AI study assistant for Career-Mate, an online learning platform. Answer the following question in a clear, educational, and friendly way. Keep your response concise but informative (2-4 paragraphs max).

Question: %s`

// AssistantUseCase forwards study questions to the text generation service.
type AssistantUseCase struct {
	generator TextGenerator
}

func NewAssistantUseCase(g TextGenerator) *AssistantUseCase {
	return &AssistantUseCase{generator: g}
}

func (uc *AssistantUseCase) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", domain.NewValidationError("message", "Message is required")
	}

	reply, err := uc.generator.Generate(ctx, fmt.Sprintf(chatPromptTemplate, message))
	if err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			return "", err
		}
		return "", &domain.UpstreamError{Service: "text generation", Err: err}
	}
	return reply, nil
}
