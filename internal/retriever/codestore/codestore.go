// Package codestore implements the CodeRetriever: it resolves
// filenames out of a stack trace, or otherwise runs a filename-aware
// semantic query, against an in-memory code corpus.
//
// Grounded on original_source/code_base_retriever.py: the stack-trace
// heuristic (look for "stack:" or " at ", extract /name.ext tokens,
// dedupe and sort) generalized from its JS-only `\.js` pattern to a
// configurable extension set, and its SelfQueryRetriever filename
// filter path, reimplemented here by reusing internal/query/translator
// instead of a second bespoke translator.
package codestore

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/document"
	"github.com/ragcat-dev/ragcat/internal/llmclient"
	"github.com/ragcat-dev/ragcat/internal/query"
	"github.com/ragcat-dev/ragcat/internal/query/translator"
)

const namedFilePrompt = `Does the operator's question name one specific source file? Respond
with JSON {"filename": string}, using the empty string if no file is named.`

// Embedder produces a vector embedding for a piece of text. The
// embedding backend itself is an opaque external service (spec.md §1
// out-of-scope); this interface is the only seam the retriever needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config parameterizes the code store per spec.md §6.
type Config struct {
	Path       string
	Glob       string
	Extensions []string
	Language   string
	K          int
}

type fileRecord struct {
	path   string
	name   string
	body   string
	vector []float32
}

// Retriever answers CodeRetriever.search over an in-memory corpus kept
// current by a Watcher.
type Retriever struct {
	mu       sync.RWMutex
	files    []fileRecord
	cfg      Config
	extRE    *regexp.Regexp
	embedder Embedder
	// llm resolves which file, if any, a free-form question names
	// (spec.md §6 opensearch_retriever role). Optional: nil falls back
	// to the plain token heuristic in namedFile.
	llm *llmclient.Client
	log *zap.Logger
}

// New builds a Retriever with an empty corpus; load or a Watcher
// populates it. llm may be nil, in which case the semantic path's
// filename-naming step uses the plain token heuristic only.
func New(cfg Config, embedder Embedder, llm *llmclient.Client, log *zap.Logger) *Retriever {
	return &Retriever{
		cfg:      cfg,
		extRE:    filenameRegexp(cfg.Extensions),
		embedder: embedder,
		llm:      llm,
		log:      log,
	}
}

// filenameRegexp builds a `/[^/\s:]+\.ext` pattern over a configurable
// extension set (spec.md §4.5); the name part stops at whitespace and
// colons, and an empty extension set means "go".
func filenameRegexp(extensions []string) *regexp.Regexp {
	if len(extensions) == 0 {
		extensions = []string{"go"}
	}
	escaped := make([]string, len(extensions))
	for i, ext := range extensions {
		escaped[i] = regexp.QuoteMeta(strings.TrimPrefix(ext, "."))
	}
	pattern := `/[^/\s:]+\.(?:` + strings.Join(escaped, "|") + `)`
	return regexp.MustCompile(pattern)
}

// isStackTrace reports whether q looks like a stack trace per the
// original heuristic: it contains the literal "stack:" or " at ".
func isStackTrace(q string) bool {
	return strings.Contains(q, "stack:") || strings.Contains(q, " at ")
}

// ExtractFilenames returns the deduplicated, sorted set of filenames
// matching re inside q, stripped of their leading path separator.
func ExtractFilenames(q string, re *regexp.Regexp) []string {
	matches := re.FindAllString(q, -1)
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		seen[strings.TrimPrefix(m, "/")] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Search resolves q against the code corpus: a stack trace is resolved
// to an exact filename filter; anything else runs a semantic query,
// optionally narrowed to a filename the question names.
func (r *Retriever) Search(ctx context.Context, q string) ([]document.Document, error) {
	if isStackTrace(q) {
		filenames := ExtractFilenames(q, r.extRE)
		return r.searchByFilenames(filenames), nil
	}
	return r.semanticSearch(ctx, q)
}

func (r *Retriever) searchByFilenames(filenames []string) []document.Document {
	if len(filenames) == 0 {
		return nil
	}
	sq := query.StructuredQuery{Filter: filenameFilter(filenames)}
	r.log.Debug("code store filename filter", zap.Any("filter", translator.Translate(sq)))

	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[string]struct{}, len(filenames))
	for _, f := range filenames {
		want[f] = struct{}{}
	}
	var docs []document.Document
	for _, f := range r.files {
		if _, ok := want[f.name]; ok {
			docs = append(docs, projectFile(f, 0))
		}
	}
	return docs
}

// filenameFilter builds the Or(Comparison(eq, filename, f))... tree for
// a filename lookup; internal/query/translator.Translate lowers it the
// same way it lowers a LogRetriever filter. searchByFilenames only logs
// the lowered form; the lookup itself matches names in memory.
func filenameFilter(filenames []string) query.FilterExpr {
	children := make([]query.FilterExpr, 0, len(filenames))
	for _, f := range filenames {
		children = append(children, query.Comparison{Attribute: "filename", Op: query.OpEq, Value: f})
	}
	return query.Or{Children: children}
}

func (r *Retriever) semanticSearch(ctx context.Context, q string) ([]document.Document, error) {
	vec, err := r.embedder.Embed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("codestore: embed query: %w", err)
	}

	named := r.resolveNamedFile(ctx, q)

	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		file  fileRecord
		score float64
	}
	var candidates []scored
	for _, f := range r.files {
		if named != "" && f.name != named {
			continue
		}
		candidates = append(candidates, scored{file: f, score: cosineSimilarity(vec, f.vector)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	k := r.cfg.K
	if k <= 0 || k > len(candidates) {
		k = len(candidates)
	}
	docs := make([]document.Document, 0, k)
	for _, c := range candidates[:k] {
		docs = append(docs, projectFile(c.file, c.score))
	}
	return docs, nil
}

// resolveNamedFile asks the configured LLM role whether q names a
// specific file; a malformed or empty reply (or no configured role)
// falls back to the plain token heuristic (spec.md §7 kind 2).
func (r *Retriever) resolveNamedFile(ctx context.Context, q string) string {
	if r.llm == nil {
		return namedFile(q)
	}
	var out struct {
		Filename string `json:"filename"`
	}
	if err := r.llm.CompleteJSON(ctx, namedFilePrompt, q, &out); err != nil || out.Filename == "" {
		return namedFile(q)
	}
	return out.Filename
}

// namedFile returns the first token of a question that contains a dot
// and does not start with "/" (e.g. "crm.service.js" in "what does
// crm.service.js do?"), or "" when there is none.
func namedFile(q string) string {
	for _, tok := range strings.Fields(q) {
		tok = strings.Trim(tok, "?.,:;()")
		if strings.Contains(tok, ".") && !strings.HasPrefix(tok, "/") {
			return tok
		}
	}
	return ""
}

func projectFile(f fileRecord, score float64) document.Document {
	return document.New(f.body, map[string]any{
		"source":   string(document.SourceCode),
		"filename": f.name,
		"path":     f.path,
		"score":    score,
	})
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// replaceCorpus atomically swaps in a freshly loaded or reloaded
// corpus; called by load and by the Watcher on a file-change event.
func (r *Retriever) replaceCorpus(files []fileRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = files
}
