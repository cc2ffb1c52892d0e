package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
)

const (
	defaultTopK    = 3
	lexicalWeight  = 0.4
	semanticWeight = 0.6
	bm25K1         = 1.5
	bm25B          = 0.75
)

var _ retriever.Retriever = (*HybridRetriever)(nil)

// HybridRetriever blends BM25 keyword scores with embedding similarity.
// Without an embedder it is purely lexical.
type HybridRetriever struct {
	docs     []*schema.Document
	terms    []map[string]int
	lengths  []int
	avgLen   float64
	docFreq  map[string]int
	vectors  [][]float64
	embedder embedding.Embedder
}

func newHybridRetriever(ctx context.Context, docs []*schema.Document, embedder embedding.Embedder) (*HybridRetriever, error) {
	r := &HybridRetriever{
		docs:     docs,
		terms:    make([]map[string]int, len(docs)),
		lengths:  make([]int, len(docs)),
		docFreq:  make(map[string]int),
		embedder: embedder,
	}

	total := 0
	for i, d := range docs {
		tf := make(map[string]int)
		toks := tokenize(d.Content)
		for _, tok := range toks {
			tf[tok]++
		}
		for tok := range tf {
			r.docFreq[tok]++
		}
		r.terms[i] = tf
		r.lengths[i] = len(toks)
		total += len(toks)
	}
	if len(docs) > 0 {
		r.avgLen = float64(total) / float64(len(docs))
	}

	if embedder != nil && len(docs) > 0 {
		texts := make([]string, len(docs))
		for i, d := range docs {
			texts[i] = d.Content
		}
		vecs, err := embedder.EmbedStrings(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed catalog chunks: %w", err)
		}
		if len(vecs) != len(docs) {
			return nil, fmt.Errorf("embed catalog chunks: got %d vectors for %d chunks", len(vecs), len(docs))
		}
		r.vectors = vecs
	}
	return r, nil
}

func (r *HybridRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	k := defaultTopK
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &k}, opts...)
	if options.TopK != nil && *options.TopK > 0 {
		k = *options.TopK
	}
	if len(r.docs) == 0 {
		return nil, nil
	}

	lexical := normalizeScores(r.bm25(tokenize(query)))
	scores := make([]float64, len(r.docs))
	if r.vectors != nil {
		qv, err := r.embedder.EmbedStrings(ctx, []string{query})
		if err != nil || len(qv) != 1 {
			// semantic half unavailable; rank lexically
			copy(scores, lexical)
		} else {
			semantic := make([]float64, len(r.docs))
			for i, v := range r.vectors {
				semantic[i] = cosine(qv[0], v)
			}
			semantic = normalizeScores(semantic)
			for i := range scores {
				scores[i] = lexicalWeight*lexical[i] + semanticWeight*semantic[i]
			}
		}
	} else {
		copy(scores, lexical)
	}

	idx := make([]int, len(r.docs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	if k > len(idx) {
		k = len(idx)
	}
	out := make([]*schema.Document, 0, k)
	for _, i := range idx[:k] {
		if options.ScoreThreshold != nil && scores[i] < *options.ScoreThreshold {
			continue
		}
		d := *r.docs[i]
		d.MetaData = make(map[string]any, len(r.docs[i].MetaData)+1)
		for mk, mv := range r.docs[i].MetaData {
			d.MetaData[mk] = mv
		}
		out = append(out, d.WithScore(scores[i]))
	}
	return out, nil
}

func (r *HybridRetriever) bm25(query []string) []float64 {
	n := float64(len(r.docs))
	scores := make([]float64, len(r.docs))
	for _, q := range query {
		df := float64(r.docFreq[q])
		if df == 0 {
			continue
		}
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		for i, tf := range r.terms {
			f := float64(tf[q])
			if f == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(r.lengths[i])/math.Max(r.avgLen, 1)
			scores[i] += idf * (f * (bm25K1 + 1)) / (f + bm25K1*norm)
		}
	}
	return scores
}

func normalizeScores(in []float64) []float64 {
	out := make([]float64, len(in))
	maxV := 0.0
	for _, v := range in {
		if v > maxV {
			maxV = v
		}
	}
	if maxV <= 0 {
		return out
	}
	for i, v := range in {
		if v > 0 {
			out[i] = v / maxV
		}
	}
	return out
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}
