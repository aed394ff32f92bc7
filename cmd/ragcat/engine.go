package main

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ragcat-dev/ragcat/internal/answerer"
	"github.com/ragcat-dev/ragcat/internal/config"
	"github.com/ragcat-dev/ragcat/internal/grader"
	"github.com/ragcat-dev/ragcat/internal/llmclient"
	"github.com/ragcat-dev/ragcat/internal/pipeline"
	"github.com/ragcat-dev/ragcat/internal/query/constructor"
	"github.com/ragcat-dev/ragcat/internal/retriever/codestore"
	"github.com/ragcat-dev/ragcat/internal/retriever/docstore"
	"github.com/ragcat-dev/ragcat/internal/retriever/logstore"
	"github.com/ragcat-dev/ragcat/internal/rewriter"
	"github.com/ragcat-dev/ragcat/internal/summarizer"
	"github.com/ragcat-dev/ragcat/internal/transport"
)

// newLogger builds the process-wide structured logger, grounded on the
// teacher pack's zap.NewProductionConfig + atomic-level-from-flag idiom.
func newLogger(cfg config.DiagnosticsConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	} else if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// closers collects shutdown hooks for long-lived resources built while
// wiring the engine (backend clients, the code-store watcher) so the
// caller can release them in reverse order once the transport loop exits.
type closers struct {
	fns []func()
}

func (c *closers) add(fn func()) { c.fns = append(c.fns, fn) }

func (c *closers) closeAll() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}

// buildEngine wires every spec.md §4 component from cfg, following
// Design Notes §9's "constructor-injected configuration record; no
// process-wide mutable state in the core". Each backend client is
// long-lived and safe for concurrent use (spec.md §5); the returned
// closers release them when the caller is done.
func buildEngine(ctx context.Context, cfg config.Config, sink transport.Sink, log *zap.Logger) (*pipeline.Engine, *closers, error) {
	cl := &closers{}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.LogIndex.URL},
		APIKey:    cfg.LogIndex.APIKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build elasticsearch client: %w", err)
	}
	logs := logstore.New(es, cfg.LogIndex.Index, log)

	qc := constructor.New(llmclient.New(cfg.LLM.OpenSearchRetriever.ToClientConfig(), log), log)
	relevance := grader.NewRelevanceGrader(llmclient.New(cfg.LLM.RetrievalGrader.ToClientConfig(), log), log)
	rw := rewriter.New(llmclient.New(cfg.LLM.QuestionRewriter.ToClientConfig(), log))
	ans := answerer.New(llmclient.New(cfg.LLM.Answerer.ToClientConfig(), log))
	answerGrader := grader.NewAnswerGrader(llmclient.New(cfg.LLM.AnswerGrader.ToClientConfig(), log))
	grounding := grader.NewGroundingGrader(llmclient.New(cfg.LLM.HallucinationGrader.ToClientConfig(), log))
	summ := summarizer.New(llmclient.New(cfg.LLM.LogSummarizer.ToClientConfig(), log), summarizerCharBudget)

	var docStore *docstore.Retriever
	if cfg.DocumentStore.URI != "" {
		mongoClient, err := mongo.Connect(ctx, mongoClientOptions(cfg.DocumentStore))
		if err != nil {
			return nil, nil, fmt.Errorf("connect document store: %w", err)
		}
		cl.add(func() { _ = mongoClient.Disconnect(context.Background()) })

		collections := make([]docstore.CollectionConfig, len(cfg.DocumentStore.Collections))
		for i, c := range cfg.DocumentStore.Collections {
			collections[i] = docstore.CollectionConfig{
				Name:             c.Name,
				ExactMatchFields: c.ExactMatchFields,
				RegexMatchFields: c.RegexMatchFields,
				MetadataFields:   c.MetadataFields,
				ContentField:     c.ContentField,
			}
		}
		mongoLLM := llmclient.New(cfg.LLM.MongoDBRetriever.ToClientConfig(), log)
		docStore = docstore.New(mongoClient.Database(cfg.DocumentStore.Database), collections, mongoLLM, cfg.DocumentStore.QueryLimit, log)
	}

	var code *codestore.Retriever
	if cfg.CodeStore.Path != "" {
		embedder := llmclient.New(llmclient.Config{
			BaseURL:     cfg.LLM.Retriever.BaseURL,
			Model:       cfg.CodeStore.EmbeddingModel,
			Temperature: cfg.LLM.Retriever.Temperature,
			Timeout:     cfg.LLM.Retriever.Timeout,
		}, log)
		namedFileLLM := llmclient.New(cfg.LLM.OpenSearchRetriever.ToClientConfig(), log)
		codeCfg := codestore.Config{
			Path:       cfg.CodeStore.Path,
			Glob:       cfg.CodeStore.Glob,
			Extensions: cfg.CodeStore.Extensions,
			Language:   cfg.CodeStore.Language,
			K:          cfg.CodeStore.K,
		}
		code = codestore.New(codeCfg, embedder, namedFileLLM, log)

		watcher, err := codestore.NewWatcher(code, log)
		if err != nil {
			return nil, nil, fmt.Errorf("start code store watcher: %w", err)
		}
		watchCtx, cancel := context.WithCancel(ctx)
		go watcher.Run(watchCtx)
		cl.add(cancel)
	}

	eng := &pipeline.Engine{
		QueryConstructor: qc,
		Logs:             logs,
		Answerer:         ans,
		Relevance:        relevance,
		Rewriter:         rw,
		AnswerGrader:     answerGrader,
		Grounding:        grounding,
		Summarizer:       summ,
		Sink:             sink,
		Log:              log,
		QuerySize:        cfg.LogIndex.QuerySize,
	}
	if docStore != nil {
		eng.DocStore = docStore
	}
	if code != nil {
		eng.Code = code
	}
	return eng, cl, nil
}

// summarizerCharBudget is the combined evidence length above which the
// summarizer actually invokes its LLM role (spec.md §11 supplemented
// log_summarizer feature); below it, content passes through unchanged.
const summarizerCharBudget = 4000

func mongoClientOptions(cfg config.DocumentStoreConfig) *options.ClientOptions {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.UseSSL {
		opts.SetTLSConfig(tlsConfigFor(cfg))
	}
	return opts
}
