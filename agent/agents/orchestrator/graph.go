package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/fieldline/sales-copilot/agent/nodes"
)

func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_state",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadState(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_state: %w", err)
	}

	if err := graph.AddLambdaNode("begin_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.BeginTurn(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node begin_turn: %w", err)
	}

	if err := graph.AddLambdaNode("ensure_route",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.EnsureRoute(ctx, in, o.routes)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node ensure_route: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeEndedReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.EndedReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeEndedReply, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeSelectRetailer,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SelectRetailer(ctx, in, o.matcher, o.catalog, o.models.Pitch())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeSelectRetailer, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeRenderPlan,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RenderPlan(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeRenderPlan, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeLogOrder,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LogOrder(ctx, in, o.orders, o.newVisitID)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeLogOrder, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeSummarizeDay,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SummarizeDay(ctx, in, o.metrics, o.models.Summary(), o.notifier)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeSummarizeDay, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeAwaitReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AwaitReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeAwaitReply, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeSaveState,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveState(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeSaveState, err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	turnBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.RouteTurn(in)
		},
		map[string]bool{
			nodex.NodeEndedReply:     true,
			nodex.NodeLogOrder:       true,
			nodex.NodeSummarizeDay:   true,
			nodex.NodeSelectRetailer: true,
			nodex.NodeRenderPlan:     true,
			nodex.NodeAwaitReply:     true,
		},
	)
	if err := graph.AddBranch("ensure_route", turnBranch); err != nil {
		return nil, fmt.Errorf("add turn branch: %w", err)
	}

	orderBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.AfterOrder(in)
		},
		map[string]bool{
			nodex.NodeSummarizeDay: true,
			nodex.NodeSaveState:    true,
		},
	)
	if err := graph.AddBranch(nodex.NodeLogOrder, orderBranch); err != nil {
		return nil, fmt.Errorf("add order branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_state"},
		{"load_state", "begin_turn"},
		{"begin_turn", "ensure_route"},
		{nodex.NodeSelectRetailer, nodex.NodeSaveState},
		{nodex.NodeRenderPlan, nodex.NodeSaveState},
		{nodex.NodeAwaitReply, nodex.NodeSaveState},
		{nodex.NodeSummarizeDay, nodex.NodeSaveState},
		{nodex.NodeSaveState, "finalize_reply"},
		{nodex.NodeEndedReply, "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
