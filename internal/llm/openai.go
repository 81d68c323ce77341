package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const openAIMaxOutputTokens = 800

// OpenAI generates text with the OpenAI Responses API
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI client. The SDK's own retries are disabled.
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, model: model}
}

// Name implements Named
func (o *OpenAI) Name() string { return "openai" }

// Generate sends prompt as a single user message
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(openAIMaxOutputTokens),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai responses: %w", err)
	}
	return resp.OutputText(), nil
}
