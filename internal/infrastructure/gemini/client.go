package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/moai-app/moai-backend/internal/domain"
)

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(apiKey string) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-pro")
	model.SetTemperature(0.7)

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// GenerateOpener asks the model for the seed message of a fresh
// conversation. The caller owns the timeout and the fallback; this method
// just reports failure.
func (c *GeminiClient) GenerateOpener(ctx context.Context, candidate *domain.MatchCandidate) (string, error) {
	prompt := fmt.Sprintf(`
		Generate a friendly opening message for two people who just matched on a friend-finding app.

		Match details:
		- Score: %.2f
		- Overlaps: %s
		- Complement: %s

		Keep it warm, brief, and encourage them to start chatting. Include 2-3 icebreaker suggestions.
	`, candidate.Score, strings.Join(candidate.Reasons.Overlaps, ", "), candidate.Reasons.Complement)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}
