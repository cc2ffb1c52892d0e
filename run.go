package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/travel-orchestrator/agent/agents/orchestrator"
	catalogx "github.com/tanpawarit/travel-orchestrator/agent/catalog"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	llmx "github.com/tanpawarit/travel-orchestrator/agent/llm"
	preferencex "github.com/tanpawarit/travel-orchestrator/agent/preference"
	promptx "github.com/tanpawarit/travel-orchestrator/agent/prompt"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	supervisorx "github.com/tanpawarit/travel-orchestrator/agent/supervisor"
	workerx "github.com/tanpawarit/travel-orchestrator/agent/worker"
	configx "github.com/tanpawarit/travel-orchestrator/pkg/config"
	logx "github.com/tanpawarit/travel-orchestrator/pkg/logger"
	openrouterx "github.com/tanpawarit/travel-orchestrator/pkg/openrouter"
	postgresx "github.com/tanpawarit/travel-orchestrator/pkg/postgres"
	qstashx "github.com/tanpawarit/travel-orchestrator/pkg/qstash"
	tavilyx "github.com/tanpawarit/travel-orchestrator/pkg/tavily"
	"github.com/uptrace/bun"
)

type runFlags struct {
	query    string
	document string
	session  string
	envFile  string
	parallel bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one orchestration and print the final answer as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrchestration(cmd.Context(), cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "free-text travel request")
	cmd.Flags().StringVarP(&f.document, "document", "d", "", "path to a package catalog (.json, .yaml, .txt, .md)")
	cmd.Flags().StringVarP(&f.session, "session", "s", "", "session id to create or resume")
	cmd.Flags().StringVar(&f.envFile, "env", "", "env file to load instead of ./.env")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "run independent workers concurrently")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runOrchestration(ctx context.Context, cmd *cobra.Command, f runFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	configx.SetEnvFile(f.envFile)

	logCfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		return err
	}
	logx.Init(*logCfg)

	orchCfg, err := configx.New[orchestrator.Config]("ORCHESTRATOR")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("parallel") {
		orchCfg.Parallel = f.parallel
	}

	deps, cleanup, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	orch, err := orchestrator.New(deps, *orchCfg)
	if err != nil {
		return err
	}

	sessionID := f.session
	if sessionID == "" {
		sessionID = orchestrator.NewSessionID()
	}
	log.Info().Str("session_id", sessionID).Msg("run started")

	answer, err := orch.Run(ctx, orchestrator.Request{
		SessionID:    sessionID,
		Query:        f.query,
		DocumentPath: f.document,
	}, orchestrator.WithAbort(interrupted()))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(answer)
}

// interrupted closes on the first SIGINT or SIGTERM. The run then finalizes
// after the worker in flight returns.
func interrupted() <-chan struct{} {
	abort := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		signal.Stop(sig)
		log.Warn().Msg("interrupt received, finalizing with partial results")
		close(abort)
	}()
	return abort
}

func buildDeps(ctx context.Context) (orchestrator.Deps, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("close failed")
			}
		}
	}

	llmCfg, err := configx.New[llmx.Config]("OPENROUTER")
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}
	if err := llmCfg.Validate(); err != nil {
		return orchestrator.Deps{}, cleanup, err
	}
	prompts := promptx.LoadPromptSet()

	chatModel := func(role contractx.ModelRole) (string, openrouterx.Config, error) {
		p, err := prompts.For(role)
		return p, llmCfg.OpenRouterFor(role), err
	}

	prefPrompt, prefCfg, err := chatModel(contractx.ModelRolePreference)
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}
	prefModel, err := prefCfg.New(ctx)
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}
	extractor, err := preferencex.New(ctx, prefModel, prefPrompt)
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}

	supPrompt, supCfg, err := chatModel(contractx.ModelRoleSupervisor)
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}
	supModel, err := supCfg.New(ctx)
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}
	oracle, err := supervisorx.NewLLMOracle(ctx, supModel, supPrompt)
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}

	workers, err := buildWorkers(ctx, llmCfg, chatModel, &closers)
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}

	store, err := buildStore(&closers)
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}

	deps := orchestrator.Deps{
		Store:     store,
		Extractor: extractor,
		Oracle:    oracle,
		Workers:   workers,
	}

	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		return orchestrator.Deps{}, cleanup, err
	}
	if qstashCfg.Enabled() {
		client, err := qstashx.NewClient(*qstashCfg)
		if err != nil {
			return orchestrator.Deps{}, cleanup, err
		}
		deps.Sink = orchestrator.NewQStashSink(client, qstashCfg.Destination)
	}

	return deps, cleanup, nil
}

func buildWorkers(
	ctx context.Context,
	llmCfg *llmx.Config,
	chatModel func(contractx.ModelRole) (string, openrouterx.Config, error),
	closers *[]func() error,
) ([]contractx.Worker, error) {
	var db *bun.DB
	pgCfg, err := configx.New[postgresx.Config]("DATABASE")
	if err != nil {
		return nil, err
	}
	if pgCfg.Enabled() {
		db, err = postgresx.Open(*pgCfg)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, db.Close)
	} else {
		log.Warn().Msg("DATABASE_URL not set, database worker will report not configured")
	}

	var search workerx.WebSearcher
	tavilyCfg, err := configx.New[tavilyx.Config]("TAVILY")
	if err != nil {
		return nil, err
	}
	if tavilyCfg.Enabled() {
		client, err := tavilyx.NewClient(*tavilyCfg)
		if err != nil {
			return nil, err
		}
		search = client
	} else {
		log.Warn().Msg("TAVILY_API_KEY not set, web and weather workers will report not configured")
	}

	var pipelineOpts []catalogx.PipelineOption
	if model := llmCfg.EmbeddingModel; model != "" {
		embedder, err := openrouterx.NewEmbedder(openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.ModelRoleCatalog)), model)
		if err != nil {
			return nil, err
		}
		pipelineOpts = append(pipelineOpts, catalogx.WithEmbedder(embedder))
	}

	searchPrompt, searchCfg, err := chatModel(contractx.ModelRoleSearch)
	if err != nil {
		return nil, err
	}
	searchModel, err := searchCfg.New(ctx)
	if err != nil {
		return nil, err
	}
	searcher, err := workerx.NewSearcher(ctx, search, searchModel, searchPrompt)
	if err != nil {
		return nil, err
	}

	weatherPrompt, weatherCfg, err := chatModel(contractx.ModelRoleWeather)
	if err != nil {
		return nil, err
	}
	weatherModel, err := weatherCfg.New(ctx)
	if err != nil {
		return nil, err
	}
	weather, err := workerx.NewWeatherLookup(ctx, search, weatherModel, weatherPrompt)
	if err != nil {
		return nil, err
	}

	catalogPrompt, catalogCfg, err := chatModel(contractx.ModelRoleCatalog)
	if err != nil {
		return nil, err
	}
	catalogModel, err := catalogCfg.New(ctx)
	if err != nil {
		return nil, err
	}
	document, err := workerx.NewExtractor(ctx, catalogx.NewPipeline(pipelineOpts...), catalogModel, catalogPrompt)
	if err != nil {
		return nil, err
	}

	return []contractx.Worker{document, workerx.NewAnalyst(db), searcher, weather}, nil
}

func buildStore(closers *[]func() error) (statex.Store, error) {
	redisCfg, err := configx.New[statex.RedisConfig]("REDIS")
	if err != nil {
		return nil, err
	}
	if redisCfg.Enabled() {
		store, err := statex.NewRedisStoreFromConfig(*redisCfg)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, store.Close)
		return store, nil
	}

	if upstashCfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS"); err == nil {
		return statex.NewUpstashRedisStore(*upstashCfg)
	}

	log.Warn().Msg("no checkpoint store configured, sessions cannot be resumed across processes")
	return statex.NewMemoryStore(), nil
}
