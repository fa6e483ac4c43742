package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/ai/fallback"
	"github.com/spigell/interviewer/internal/ai/gemini"
	"github.com/spigell/interviewer/internal/ai/llm"
	"github.com/spigell/interviewer/internal/ai/openai"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/metrics"
	"github.com/spigell/interviewer/internal/report"
	"github.com/spigell/interviewer/internal/secrets"
	"github.com/spigell/interviewer/internal/skills"
	"github.com/spigell/interviewer/internal/termination"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive screening interview",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume-file", "r", "", "plain text resume used as the introduction answer")
	runCmd.Flags().String("metrics-listen", "", "address to serve prometheus metrics on, e.g. :9090. Default is unset.")
	runCmd.Flags().IntP("questions", "n", 0, "total number of questions, overrides interview.total-questions")

	viper.BindPFlag("metrics.listen", runCmd.Flags().Lookup("metrics-listen"))
}

// run conducts one interview in the terminal.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if n, _ := cmd.Flags().GetInt("questions"); n > 0 {
		config.Interview.TotalQuestions = n
	}

	catalogue, err := catalogueFromConfig(config.Skills)
	if err != nil {
		logger.Fatal("building skill catalogue", zap.Error(err))
	}

	m := metrics.NewInterviewMetrics(prometheus.DefaultRegisterer)
	if listen := strings.TrimSpace(config.Metrics.Listen); listen != "" {
		srv := serveMetrics(listen, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	collaborators, err := newCollaborators(ctx, config.AI, catalogue, logger)
	if err != nil {
		logger.Warn("using built-in heuristics instead of a model", zap.Error(err))
	}

	sinks, closeSinks, err := prepareSinks(config.Reports)
	if err != nil {
		logger.Fatal("preparing report sinks", zap.Error(err))
	}
	defer closeSinks()

	summaries := fallback.NewGuard(collaborators, fallback.NewHeuristics(catalogue),
		config.Interview.CollaboratorTimeout, logger, m)
	writer := report.NewWriter(summaries, logger, sinks...)

	orchestrator, err := interview.New(*config.Interview, interview.Deps{
		Policy:        termination.New(*config.Termination, logger),
		Catalogue:     catalogue,
		Collaborators: collaborators,
		Finalizer:     writer,
		Logger:        logger,
		Metrics:       m,
	})
	if err != nil {
		logger.Fatal("creating the orchestrator", zap.Error(err))
	}

	resume, err := readResume(cmd)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	session := orchestrator.NewSession()
	turn, err := orchestrator.Start(session)
	if err != nil {
		logger.Fatal("starting the interview", zap.Error(err))
	}

	if resume != "" {
		fmt.Printf("\n%s\n(using the resume from file)\n", turn.Prompt.Text)
		turn, err = orchestrator.Submit(ctx, session, resume)
		if err != nil {
			logger.Fatal("submitting the resume", zap.Error(err))
		}
	}

	input := newAnswerReader(os.Stdin, term.IsTerminal(int(os.Stdin.Fd())))
	turn = converse(ctx, orchestrator, session, turn, input, logger)
	outcome := writer.Last()
	if turn.Phase == interview.PhaseTerminated {
		outcome = report.Build(session.Snapshot(), time.Now().UTC())
	}
	printOutcome(os.Stdout, turn, outcome)
}

func converse(ctx context.Context, o *interview.Orchestrator, s *interview.Session, turn *interview.Turn, input answerReader, logger *zap.Logger) *interview.Turn {
	for !turn.Phase.Terminal() {
		printPrompt(turn)

		text, err := input.ReadAnswer()

		var next *interview.Turn
		switch {
		case errors.Is(err, promptui.ErrInterrupt):
			fmt.Println("Leaving the interview window is recorded as suspicious activity.")
			next, err = o.RecordSuspiciousActivity(s)
		case errors.Is(err, promptui.ErrEOF), errors.Is(err, promptui.ErrAbort):
			next, err = o.Terminate(s, termination.ReasonCandidateRequest, "")
		case err != nil:
			logger.Fatal("reading the answer", zap.Error(err))
		default:
			next, err = o.Submit(ctx, s, text)
		}

		if next != nil {
			turn = next
		}

		switch {
		case errors.Is(err, interview.ErrInvalidSubmission):
			fmt.Println("Please type an answer, or \"skip\" to move on.")
		case errors.Is(err, interview.ErrSessionTerminated):
			return turn
		case err != nil:
			logger.Fatal("processing the answer", zap.Error(err))
		}
	}
	return turn
}

func printPrompt(turn *interview.Turn) {
	if turn.Prompt == nil {
		return
	}
	if turn.Prompt.Position == 0 {
		fmt.Printf("\n%s\n", turn.Prompt.Text)
		return
	}
	fmt.Printf("\nQuestion %d/%d (%s): %s\n", turn.Prompt.Position, turn.Prompt.Total, turn.Prompt.Kind, turn.Prompt.Text)
}

func printOutcome(w io.Writer, turn *interview.Turn, r *report.Report) {
	fmt.Fprintf(w, "\n%s\n", turn.Message)
	if r == nil {
		return
	}

	if r.Termination != nil {
		fmt.Fprintf(w, "Stopped after %d of %d questions (%s), partial score: %.1f/10\n",
			len(r.Entries), turn.Total, r.Termination.Reason, r.Final)
		return
	}

	fmt.Fprintf(w, "Final score: %.1f/10 (%s)\n", r.Final, r.Performance)
	fmt.Fprintf(w, "Recommendation: %s\n", r.Recommendation)
	if r.Summary != "" {
		fmt.Fprintf(w, "Summary: %s\n", r.Summary)
	}
}

func readResume(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("resume-file")
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func serveMetrics(listen string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("listen", listen))
	return srv
}

func prepareSinks(cfg *ReportsConfig) ([]report.Sink, func(), error) {
	sinks := make([]report.Sink, 0, 2)
	closeFn := func() {}

	fileSink, err := report.NewFileSink(strings.TrimSpace(cfg.Dir))
	if err != nil {
		return nil, closeFn, err
	}
	sinks = append(sinks, fileSink)

	if dsn := strings.TrimSpace(cfg.Database); dsn != "" {
		store, err := report.NewSQLiteStore(dsn)
		if err != nil {
			return nil, closeFn, err
		}
		sinks = append(sinks, store)
		closeFn = func() { store.Close() }
	}

	return sinks, closeFn, nil
}

func newCollaborators(ctx context.Context, cfg *AIConfig, catalogue *skills.Catalogue, log *zap.Logger) (ai.Collaborators, error) {
	if cfg == nil || !cfg.Enabled {
		return ai.Collaborators{}, errors.New("ai is disabled")
	}

	generator, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return ai.Collaborators{}, fmt.Errorf("building content generator: %w", err)
	}

	assistantLogger := logger.WithCommonFields(log, cfg.Provider, generator.Model())
	assistant, err := llm.New(generator, catalogue, assistantLogger, cfg.MaxLogLength)
	if err != nil {
		return ai.Collaborators{}, err
	}
	return assistant.Collaborators(), nil
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (llm.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", "openai":
		oc := cfg.OpenAI
		if oc == nil {
			oc = &OpenAIConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{Name: "openai api key", File: oc.APIKeyFile, Env: oc.APIKeyEnv})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or ai.openai.api-key-env)", err)
		}
		return openai.NewGenerator(openai.Config{
			BaseURL:     oc.BaseURL,
			Model:       oc.Model,
			APIKey:      apiKey,
			Timeout:     oc.Timeout,
			MaxRetries:  oc.MaxRetries,
			Temperature: oc.Temperature,
		}, nil)
	case "gemini":
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{Name: "gemini api key", File: gc.APIKeyFile, Env: gc.APIKeyEnv})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or ai.gemini.api-key-env)", err)
		}
		genLogger := log.With(
			zap.String("provider", "gemini"),
			zap.String("model", gc.Model),
			zap.Int("ai_retry_attempts", gc.MaxRetries),
		)
		return gemini.NewGenerator(ctx, apiKey, gc.Model, gc.MaxRetries, genLogger)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
