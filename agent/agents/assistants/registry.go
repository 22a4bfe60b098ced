package assistants

import (
	"context"
	"fmt"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	llmx "github.com/fieldline/sales-copilot/agent/llm"
	promptx "github.com/fieldline/sales-copilot/agent/prompt"
	openrouterx "github.com/fieldline/sales-copilot/pkg/openrouter"
)

type registryImpl struct {
	selector contractx.LineSelector
	pitch    contractx.PitchWriter
	summary  contractx.SummaryWriter
}

func (r *registryImpl) Selector() contractx.LineSelector {
	return r.selector
}

func (r *registryImpl) Pitch() contractx.PitchWriter {
	return r.pitch
}

func (r *registryImpl) Summary() contractx.SummaryWriter {
	return r.summary
}

// NewRegistry builds all three LLM collaborators from one role-aware config.
func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	selectorCfg := cfg.OpenRouterFor(llmx.RoleSelector)
	selectorClient := openrouterx.NewClient(selectorCfg)
	selector, err := newSelector(selectorClient, selectorCfg.Model, prompts.Selector)
	if err != nil {
		return nil, err
	}

	pitchCfg := cfg.OpenRouterFor(llmx.RolePitch)
	pitchModel, err := pitchCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create pitch model: %v", contractx.ErrModelInvoke, err)
	}
	pitch, err := newPitchWriter(ctx, pitchModel, prompts.Pitch)
	if err != nil {
		return nil, err
	}

	summaryCfg := cfg.OpenRouterFor(llmx.RoleSummary)
	summaryModel, err := summaryCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create summary model: %v", contractx.ErrModelInvoke, err)
	}
	summary, err := newSummaryWriter(ctx, summaryModel, prompts.Summary)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		selector: selector,
		pitch:    pitch,
		summary:  summary,
	}, nil
}
