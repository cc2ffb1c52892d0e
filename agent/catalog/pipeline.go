package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

// Index is a loaded catalog. Structured catalogs carry Packages; text
// catalogs carry Chunks and a Retriever over them.
type Index struct {
	Path      string
	Format    Format
	Packages  []statex.CatalogPackage
	Chunks    []*schema.Document
	Retriever *HybridRetriever
	LoadedAt  time.Time
	modTime   time.Time
}

type PipelineOption func(*Pipeline)

func WithEmbedder(e embedding.Embedder) PipelineOption {
	return func(p *Pipeline) {
		p.embedder = e
	}
}

func WithChunking(size, overlap int) PipelineOption {
	return func(p *Pipeline) {
		p.chunkSize = size
		p.chunkOverlap = overlap
	}
}

// Pipeline owns the catalog index of one document. It builds the index on
// first use and rebuilds it when the path or the file's modification time
// changes, or after Reset.
type Pipeline struct {
	mu           sync.Mutex
	current      *Index
	embedder     embedding.Embedder
	chunkSize    int
	chunkOverlap int
	now          func() time.Time
}

func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Open returns the index for path, building it if needed.
func (p *Pipeline) Open(ctx context.Context, path string) (*Index, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve document path: %w", err)
	}
	format, err := DetectFormat(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat document %s: %w", filepath.Base(abs), err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("document %s is a directory", filepath.Base(abs))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cur := p.current; cur != nil && cur.Path == abs && cur.modTime.Equal(info.ModTime()) {
		return cur, nil
	}

	idx, err := p.build(ctx, abs, format)
	if err != nil {
		return nil, err
	}
	idx.modTime = info.ModTime()
	p.current = idx

	log.Debug().
		Str("document", filepath.Base(abs)).
		Str("format", string(format)).
		Int("packages", len(idx.Packages)).
		Int("chunks", len(idx.Chunks)).
		Msg("catalog index built")
	return idx, nil
}

// Reset drops the current index so the next Open rebuilds it.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
}

func (p *Pipeline) build(ctx context.Context, path string, format Format) (*Index, error) {
	raw, err := readCatalog(path)
	if err != nil {
		return nil, err
	}

	idx := &Index{Path: path, Format: format, LoadedAt: p.now()}
	switch format {
	case FormatStructured:
		pkgs, err := parsePackages(path, raw)
		if err != nil {
			return nil, err
		}
		idx.Packages = pkgs
	case FormatText:
		idx.Chunks = splitText(filepath.Base(path), string(raw), p.chunkSize, p.chunkOverlap)
		r, err := newHybridRetriever(ctx, idx.Chunks, p.embedder)
		if err != nil {
			// keyword retrieval still works without vectors
			log.Warn().Err(err).Str("document", filepath.Base(path)).Msg("catalog embeddings unavailable")
			r, _ = newHybridRetriever(ctx, idx.Chunks, nil)
		}
		idx.Retriever = r
	}
	return idx, nil
}
