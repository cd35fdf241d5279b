package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockClient calls AWS Bedrock via the Converse API. It exists so the
// orchestrator can run against Bedrock-hosted Llama models with the same
// gateway semantics as the NVIDIA backend.
type BedrockClient struct {
	runtime *bedrockruntime.Client
	region  string
}

// NewBedrockClient creates a Bedrock provider using the default AWS
// credential chain for the given region.
func NewBedrockClient(ctx context.Context, region string) (*BedrockClient, error) {
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, newProviderError("bedrock", "load aws config", err)
	}
	return &BedrockClient{
		runtime: bedrockruntime.NewFromConfig(cfg),
		region:  region,
	}, nil
}

// Name returns the backend identifier.
func (c *BedrockClient) Name() string { return "bedrock" }

// Call sends a Converse request and returns the first text block of the
// assistant message.
func (c *BedrockClient) Call(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64, maxTokens int) (*Completion, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(model),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: systemPrompt},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: userPrompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(maxTokens)),
			Temperature: aws.Float32(float32(temperature)),
		},
	}

	out, err := c.runtime.Converse(ctx, input)
	if err != nil {
		return nil, newProviderError(c.Name(), "converse", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, newProviderError(c.Name(), "parse response", errors.New("no message in converse output"))
	}

	text := ""
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			text += tb.Value
		}
	}
	if text == "" {
		return nil, newProviderError(c.Name(), "parse response", fmt.Errorf("empty completion from %s", model))
	}

	completion := &Completion{Text: text}
	if out.Usage != nil {
		completion.PromptTokens = int(aws.ToInt32(out.Usage.InputTokens))
		completion.CompletionTokens = int(aws.ToInt32(out.Usage.OutputTokens))
	}
	return completion, nil
}
