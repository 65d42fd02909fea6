package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

type lambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// lambdaRequest is the payload accepted by the translation-manager Lambda.
type lambdaRequest struct {
	Texts      []string `json:"texts"`
	SourceLang string   `json:"sourceLang"`
	TargetLang string   `json:"targetLang"`
}

type lambdaResponse struct {
	Translations []string `json:"translations"`
	Error        string   `json:"error,omitempty"`
}

// LambdaTranslator delegates translation to an AWS Lambda function.
type LambdaTranslator struct {
	client       lambdaInvoker
	functionName string
}

func NewLambdaTranslator(ctx context.Context, cfg Config) (*LambdaTranslator, error) {
	if cfg.TranslatorLambda == "" {
		return nil, fmt.Errorf("translator Lambda function name is required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, config.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &LambdaTranslator{
		client:       lambda.NewFromConfig(awsCfg),
		functionName: cfg.TranslatorLambda,
	}, nil
}

func (l *LambdaTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	payload, err := json.Marshal(lambdaRequest{
		Texts:      []string{text},
		SourceLang: source,
		TargetLang: target,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := l.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(l.functionName),
		Payload:      payload,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke %s: %w", l.functionName, err)
	}
	if result.FunctionError != nil {
		return "", fmt.Errorf("lambda error: %s", aws.ToString(result.FunctionError))
	}

	var resp lambdaResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("translator error: %s", resp.Error)
	}
	if len(resp.Translations) == 0 {
		return "", nil
	}
	return resp.Translations[0], nil
}

func (l *LambdaTranslator) Name() string {
	return "lambda"
}
