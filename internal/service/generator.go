package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mikele-Kochas/SmartNotebook/internal/model"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/xerr"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Generator turns a finished prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// generation carries the model outcome through the chain so provider errors
// reach the caller untouched by graph error wrapping.
type generation struct {
	msg *schema.Message
	err error
}

// ChainGenerator runs prompt -> user message -> chat model as a compiled eino
// chain. It is safe for concurrent use.
type ChainGenerator struct {
	runnable compose.Runnable[string, *generation]
	timeout  time.Duration
}

func NewChainGenerator(ctx context.Context, cm einoModel.BaseChatModel, timeout time.Duration) (*ChainGenerator, error) {
	if cm == nil {
		return nil, errors.New("chat model is required")
	}

	chain := compose.NewChain[string, *generation]()
	chain.
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, prompt string) ([]*schema.Message, error) {
			return []*schema.Message{schema.UserMessage(prompt)}, nil
		}), compose.WithNodeName("PromptToMessages")).
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, input []*schema.Message) (*generation, error) {
			msg, err := cm.Generate(ctx, input)
			return &generation{msg: msg, err: err}, nil
		}), compose.WithNodeName("ChatModel"))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &ChainGenerator{runnable: runnable, timeout: timeout}, nil
}

func (g *ChainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := g.runnable.Invoke(ctx, prompt)
	if err == nil {
		err = out.err
	}
	if err != nil {
		return "", classifyGenerationError(ctx, err)
	}

	msg := out.msg
	if msg == nil {
		return "", xerr.New(xerr.GenerationFailed, "empty response from model")
	}
	if msg.ResponseMeta != nil && model.IsBlockingFinishReason(msg.ResponseMeta.FinishReason) {
		return "", xerr.Wrap(xerr.GenerationBlocked,
			(&model.BlockedError{Reason: msg.ResponseMeta.FinishReason}).Error(), model.ErrBlocked)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return "", xerr.New(xerr.GenerationFailed, "no text content in model response")
	}

	fields := logger.Fields{"duration_ms": time.Since(start).Milliseconds()}
	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		fields["prompt_tokens"] = msg.ResponseMeta.Usage.PromptTokens
		fields["completion_tokens"] = msg.ResponseMeta.Usage.CompletionTokens
	}
	logger.WithFields(fields).Debug("generation completed")

	return msg.Content, nil
}

func classifyGenerationError(ctx context.Context, err error) error {
	var blocked *model.BlockedError
	if errors.As(err, &blocked) {
		return xerr.Wrap(xerr.GenerationBlocked, blocked.Error(), err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return xerr.Wrap(xerr.GenerationFailed, "generation timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return xerr.Wrap(xerr.GenerationFailed, "generation canceled", err)
	}
	return xerr.Wrap(xerr.GenerationFailed, err.Error(), err)
}
