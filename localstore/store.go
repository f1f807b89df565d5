// Package localstore builds, persists and reloads the chromem-go index the
// bot answers from.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/embedding"
	"github.com/hsmtkk/turbo-octo-pancake/reader"
)

const CollectionName = "knowledge-base"

var ErrEmptyIndex = errors.New("index has no documents")

// Index is an in-memory chromem-go collection plus the records needed to
// persist it again.
type Index struct {
	collection *chromem.Collection
	embedder   embedding.Embedder
	set        *ArtifactSet
}

// Init creates an empty index whose queries are embedded with e.
func Init(e embedding.Embedder) (*Index, error) {
	log := linerag.Logger
	db := chromem.NewDB()
	collection, err := db.CreateCollection(CollectionName, nil, embedding.Func(e))
	if err != nil {
		log.Error("Error creating collection", "error", err)
		return nil, err
	}
	gen := uuid.NewString()
	return &Index{
		collection: collection,
		embedder:   e,
		set: &ArtifactSet{
			docs:    docStore{Generation: gen, Docs: map[string]storedDoc{}},
			vectors: vectorStore{Generation: gen, EmbeddingDict: map[string][]float32{}},
			graph:   graphStore{Generation: gen, GraphDict: map[string][]string{}},
			images:  vectorStore{Generation: gen, EmbeddingDict: map[string][]float32{}},
			index: indexStore{
				Generation:     gen,
				Collection:     CollectionName,
				EmbeddingModel: e.Model(),
				CreatedAt:      time.Now().UTC(),
				DocIDs:         []string{},
			},
		},
	}, nil
}

// Build splits and embeds docs into a new index.
func Build(ctx context.Context, docs []reader.Document, splitter *reader.Splitter, e embedding.Embedder) (*Index, error) {
	idx, err := Init(e)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := idx.AddDocument(ctx, doc, splitter); err != nil {
			return nil, err
		}
	}
	if idx.Count() == 0 {
		return nil, ErrEmptyIndex
	}
	return idx, nil
}

// AddDocument embeds every chunk of doc. IDs must be unique, otherwise
// chromem-go overwrites earlier chunks, so they are derived from the generation.
func (idx *Index) AddDocument(ctx context.Context, doc reader.Document, splitter *reader.Splitter) error {
	log := linerag.Logger
	chunks, err := splitter.Split(doc.Text)
	if err != nil {
		return fmt.Errorf("split %s: %w", doc.Path, err)
	}
	log.Info("Processing document", "source", doc.Metadata[reader.MetaSource], "chunks", len(chunks))

	batch := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		id := idx.set.index.Generation + "-" + strconv.Itoa(len(idx.set.index.DocIDs)+len(batch))
		vec, err := idx.embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", id, err)
		}
		meta := make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		log.Debug("Adding document into chromem", "id", id, "length", len(chunk))
		batch = append(batch, chromem.Document{
			ID:        id,
			Content:   chunk,
			Embedding: vec,
			Metadata:  meta,
		})
	}
	if len(batch) == 0 {
		return nil
	}
	if err := idx.collection.AddDocuments(ctx, batch, runtime.NumCPU()); err != nil {
		return err
	}
	for _, d := range batch {
		idx.set.docs.Docs[d.ID] = storedDoc{Text: d.Content, Metadata: d.Metadata}
		idx.set.vectors.EmbeddingDict[d.ID] = d.Embedding
		idx.set.index.DocIDs = append(idx.set.index.DocIDs, d.ID)
	}
	return nil
}

// Count is the number of chunks in the collection.
func (idx *Index) Count() int {
	return idx.collection.Count()
}

// Generation identifies this index build.
func (idx *Index) Generation() string {
	return idx.set.Generation()
}

// Persist writes the artifact set into dir.
func (idx *Index) Persist(dir string) error {
	linerag.Logger.Info("Storing index", "path", dir, "generation", idx.Generation(), "documents", idx.Count())
	return idx.set.write(dir)
}

// Load reconstructs an index from the artifact set in dir. Queries are
// embedded with e, which must be the model the set was built with.
func Load(ctx context.Context, dir string, e embedding.Embedder) (*Index, error) {
	log := linerag.Logger
	set, err := ReadArtifacts(dir)
	if err != nil {
		log.Error("Error loading artifacts", "error", err)
		return nil, err
	}
	if set.EmbeddingModel() != e.Model() {
		return nil, fmt.Errorf("%w: %s, querying with %s", ErrModelMismatch, set.EmbeddingModel(), e.Model())
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(CollectionName, nil, embedding.Func(e))
	if err != nil {
		return nil, err
	}
	docs := make([]chromem.Document, 0, set.Len())
	for _, id := range set.index.DocIDs {
		stored := set.docs.Docs[id]
		docs = append(docs, chromem.Document{
			ID:        id,
			Content:   stored.Text,
			Metadata:  stored.Metadata,
			Embedding: set.vectors.EmbeddingDict[id],
		})
	}
	if len(docs) > 0 {
		if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, err
		}
	}
	log.Info("Loaded index", "generation", set.Generation(), "documents", collection.Count())
	return &Index{collection: collection, embedder: e, set: set}, nil
}

// Query returns up to n chunks most similar to question.
func (idx *Index) Query(ctx context.Context, question string, n int) ([]linerag.RagDocument, error) {
	count := idx.Count()
	if count == 0 {
		return nil, ErrEmptyIndex
	}
	if n > count {
		n = count
	}
	res, err := idx.collection.Query(ctx, question, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	out := make([]linerag.RagDocument, 0, len(res))
	for _, r := range res {
		out = append(out, linerag.RagDocument{
			ID:         r.ID,
			Content:    r.Content,
			Source:     r.Metadata[reader.MetaSource],
			Title:      r.Metadata[reader.MetaTitle],
			Similarity: r.Similarity,
		})
	}
	return out, nil
}
