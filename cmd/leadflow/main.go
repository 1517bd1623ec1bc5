package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/leadflowhq/leadflow/internal/agent"
	"github.com/leadflowhq/leadflow/internal/analytics"
	"github.com/leadflowhq/leadflow/internal/billing"
	"github.com/leadflowhq/leadflow/internal/config"
	"github.com/leadflowhq/leadflow/internal/dag"
	"github.com/leadflowhq/leadflow/internal/events"
	"github.com/leadflowhq/leadflow/internal/feedback"
	"github.com/leadflowhq/leadflow/internal/memory"
	"github.com/leadflowhq/leadflow/internal/model"
	"github.com/leadflowhq/leadflow/internal/monitoring"
	"github.com/leadflowhq/leadflow/internal/reward"
	"github.com/leadflowhq/leadflow/internal/router"
	"github.com/leadflowhq/leadflow/internal/store"
	"github.com/leadflowhq/leadflow/internal/workflow"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runGraph(os.Args[2:])
	case "workflow":
		runWorkflow(os.Args[2:])
	case "feedback":
		runFeedback(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "insights":
		runInsights(os.Args[2:])
	case "version":
		fmt.Printf("leadflow %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// app wires the engine from one config.
type app struct {
	cfg       model.Config
	logger    *log.Logger
	store     *store.MemoryStore
	bus       *events.Bus
	loop      *feedback.Loop
	registry  *agent.Registry
	runtime   *dag.Runtime
	history   *dag.History
	workflow  *workflow.Workflow
	analytics *analytics.Service
}

func newApp(configPath string) (*app, error) {
	config.LoadEnv(".env")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	st := store.NewMemoryStore()
	bus := events.NewBus(64)
	events.SubscribeAudit(bus, logger)

	rewardModel := reward.NewModel(cfg.Reward)
	stats := reward.NewStatsTracker()
	loop := feedback.NewLoop(st, rewardModel, stats, cfg.Feedback.TrainingDir, logger)

	invoker := router.NewHTTPInvoker(map[router.Target]string{
		router.TargetLocal: cfg.Router.LocalURL,
	}, time.Duration(cfg.Router.TimeoutSec)*time.Second)
	rt := router.New(invoker, cfg.Router, logger)

	mem := memory.NewVectorStore(cfg.Memory.EmbedDims)
	registry := agent.NewRegistry(agent.Deps{
		Generator: rt,
		Memory:    mem,
		Bias:      loop,
		Logger:    logger,
	})

	history := dag.NewHistory(cfg.History.Capacity)
	runtime := dag.NewRuntime(registry, history, bus, logger)

	analyticsSvc := analytics.NewService(st, logger)
	wf := workflow.New(workflow.Deps{
		Config:    cfg.Workflow,
		Store:     st,
		Registry:  registry,
		Loop:      loop,
		Memory:    mem,
		Meter:     billing.NewMeter(st, cfg.Billing.FreePlanLimit),
		Recorder:  monitoring.NewRecorder(st, bus, logger, prometheus.DefaultRegisterer),
		Analytics: analyticsSvc,
		Sender:    workflow.NewHTTPSender(10 * time.Second),
		Bus:       bus,
		Logger:    logger,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		bus:       bus,
		loop:      loop,
		registry:  registry,
		runtime:   runtime,
		history:   history,
		workflow:  wf,
		analytics: analyticsSvc,
	}, nil
}

func runGraph(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	graphPath := fs.String("graph", "", "YAML graph specification (default: built-in example)")
	owner := fs.String("owner", "demo", "tenant identifier")
	configPath := fs.String("config", "leadflow.yaml", "config file path")
	_ = fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		fatal(err)
	}

	spec := exampleGraph()
	if *graphPath != "" {
		data, err := os.ReadFile(*graphPath)
		if err != nil {
			fatal(fmt.Errorf("read graph: %w", err))
		}
		if err := yamlv3.Unmarshal(data, &spec); err != nil {
			fatal(fmt.Errorf("parse graph: %w", err))
		}
	}

	record, err := a.runtime.Run(context.Background(), *owner, spec)
	if err != nil {
		fatal(err)
	}
	printJSON(record)
	if record.Status != model.RunSucceeded {
		os.Exit(1)
	}
}

func runWorkflow(args []string) {
	fs := flag.NewFlagSet("workflow", flag.ExitOnError)
	name := fs.String("name", "", "lead name")
	email := fs.String("email", "", "lead email")
	message := fs.String("message", "", "lead inquiry text")
	owner := fs.String("owner", "demo", "tenant identifier")
	startFrom := fs.String("start-from", "score", "pipeline step to start from")
	configPath := fs.String("config", "leadflow.yaml", "config file path")
	_ = fs.Parse(args)

	if *name == "" || *message == "" {
		fmt.Fprintln(os.Stderr, "usage: leadflow workflow --name <name> --message <text> [--email addr] [--owner id] [--start-from step]")
		os.Exit(1)
	}

	a, err := newApp(*configPath)
	if err != nil {
		fatal(err)
	}

	id, err := model.NewID(model.IDTypeLead)
	if err != nil {
		fatal(err)
	}
	lead := &model.Lead{
		ID:      id,
		OwnerID: *owner,
		Name:    *name,
		Email:   *email,
		Message: *message,
		Status:  model.LeadStatusNew,
	}
	ctx := context.Background()
	if err := a.store.PutLead(ctx, lead); err != nil {
		fatal(err)
	}

	result, err := a.workflow.Run(ctx, lead.ID, *owner, model.Step(*startFrom))
	if err != nil {
		fatal(err)
	}
	printJSON(result)
}

func runFeedback(args []string) {
	fs := flag.NewFlagSet("feedback", flag.ExitOnError)
	leadID := fs.String("lead", "", "lead identifier")
	fbType := fs.String("type", "", "feedback type (accepted, rejected, edited, ...)")
	comment := fs.String("comment", "", "free-text comment")
	owner := fs.String("owner", "demo", "tenant identifier")
	configPath := fs.String("config", "leadflow.yaml", "config file path")
	_ = fs.Parse(args)

	if *fbType == "" && *comment == "" {
		fmt.Fprintln(os.Stderr, "usage: leadflow feedback --lead <id> --type <type> [--comment text] [--owner id]")
		os.Exit(1)
	}

	a, err := newApp(*configPath)
	if err != nil {
		fatal(err)
	}

	id, err := model.NewID(model.IDTypeFeedback)
	if err != nil {
		fatal(err)
	}
	entry := &model.Feedback{
		ID:        id,
		OwnerID:   *owner,
		LeadID:    *leadID,
		Type:      *fbType,
		Comment:   *comment,
		Timestamp: time.Now().UTC(),
	}
	if err := a.store.PutFeedback(context.Background(), entry); err != nil {
		fatal(err)
	}
	a.loop.MarkDirty()
	fmt.Printf("recorded feedback %s\n", entry.ID)
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	owner := fs.String("owner", "", "tenant identifier (empty exports all)")
	configPath := fs.String("config", "leadflow.yaml", "config file path")
	_ = fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		fatal(err)
	}

	count, path, err := a.loop.ExportDataset(context.Background(), *owner)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("exported %d samples to %s\n", count, path)
}

func runInsights(args []string) {
	fs := flag.NewFlagSet("insights", flag.ExitOnError)
	owner := fs.String("owner", "", "tenant identifier (empty covers all)")
	configPath := fs.String("config", "leadflow.yaml", "config file path")
	_ = fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		fatal(err)
	}

	insights, err := a.loop.Insights(context.Background(), *owner)
	if err != nil {
		fatal(err)
	}
	printJSON(insights)
}

// exampleGraph is the built-in demonstration pipeline: score a lead,
// draft a proposal from the score, then compose a follow-up.
func exampleGraph() model.GraphSpec {
	return model.GraphSpec{
		Context: map[string]any{
			"lead": map[string]any{
				"name":    "Acme Founder",
				"email":   "founder@acme.io",
				"message": "We need an MVP in four weeks with a $10k budget.",
			},
		},
		Tasks: []model.TaskSpec{
			{
				ID:     "score",
				Name:   "LeadScorer",
				Agent:  agent.TagLeadScorer,
				Inputs: map[string]any{"lead": "$lead"},
			},
			{
				ID:        "proposal",
				Name:      "ProposalGen",
				Agent:     agent.TagProposalGen,
				DependsOn: []string{"score"},
				Inputs:    map[string]any{"lead": "$lead", "score": "$score.score"},
			},
			{
				ID:        "followup",
				Name:      "FollowupAgent",
				Agent:     agent.TagFollowupAgent,
				DependsOn: []string{"proposal"},
				Inputs:    map[string]any{"lead": "$lead"},
			},
		},
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(data))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `leadflow %s - lead orchestration engine

Usage: leadflow <command> [options]

Commands:
  run [--graph file.yaml] [--owner id]        Execute a task graph (built-in example by default)
  workflow --name <n> --message <m> [flags]   Run the score/proposal/send/followup pipeline
  feedback --lead <id> --type <t> [flags]     Record feedback for the learning loop
  export [--owner id]                         Export the feedback training corpus as JSONL
  insights [--owner id]                       Summarize feedback per agent
  version                                     Show version
  help                                        Show this help

Common flags:
  --config path   Config file (default leadflow.yaml)
`, version)
}
