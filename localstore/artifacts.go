package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Artifact file names. Together they are one index generation.
const (
	DocStoreFile         = "docstore.json"
	VectorStoreFile      = "default__vector_store.json"
	GraphStoreFile       = "graph_store.json"
	ImageVectorStoreFile = "image__vector_store.json"
	IndexStoreFile       = "index_store.json"
)

// PayloadArtifacts are written and uploaded before IndexStoreFile.
var PayloadArtifacts = []string{
	DocStoreFile,
	VectorStoreFile,
	GraphStoreFile,
	ImageVectorStoreFile,
}

// CommitArtifact is written last; a set is complete once it is in place.
const CommitArtifact = IndexStoreFile

// ArtifactNames lists the whole set in upload order.
func ArtifactNames() []string {
	return append(append([]string(nil), PayloadArtifacts...), CommitArtifact)
}

var (
	ErrInconsistentArtifacts = errors.New("inconsistent index artifacts")
	ErrModelMismatch         = errors.New("index was built with a different embedding model")
)

type storedDoc struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

type docStore struct {
	Generation string               `json:"generation"`
	Docs       map[string]storedDoc `json:"docs"`
}

type vectorStore struct {
	Generation    string               `json:"generation"`
	EmbeddingDict map[string][]float32 `json:"embedding_dict"`
}

// graphStore is kept for the shape of the set; the bot never writes relations.
type graphStore struct {
	Generation string              `json:"generation"`
	GraphDict  map[string][]string `json:"graph_dict"`
}

type indexStore struct {
	Generation     string    `json:"generation"`
	Collection     string    `json:"collection"`
	EmbeddingModel string    `json:"embedding_model"`
	CreatedAt      time.Time `json:"created_at"`
	DocIDs         []string  `json:"doc_ids"`
}

// ArtifactSet is the decoded content of the five files.
type ArtifactSet struct {
	docs    docStore
	vectors vectorStore
	graph   graphStore
	images  vectorStore
	index   indexStore
}

// Generation of the set.
func (a *ArtifactSet) Generation() string {
	return a.index.Generation
}

// EmbeddingModel the vectors were produced with.
func (a *ArtifactSet) EmbeddingModel() string {
	return a.index.EmbeddingModel
}

// Len is the number of indexed chunks.
func (a *ArtifactSet) Len() int {
	return len(a.index.DocIDs)
}

func writeJSON(dir, name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), b, 0o644)
}

func readJSON(dir, name string, v any) error {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s missing", ErrInconsistentArtifacts, name)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInconsistentArtifacts, name, err)
	}
	return nil
}

// write persists the set into dir, commit artifact last.
func (a *ArtifactSet) write(dir string) error {
	payload := map[string]any{
		DocStoreFile:         a.docs,
		VectorStoreFile:      a.vectors,
		GraphStoreFile:       a.graph,
		ImageVectorStoreFile: a.images,
	}
	for _, name := range PayloadArtifacts {
		if err := writeJSON(dir, name, payload[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := writeJSON(dir, CommitArtifact, a.index); err != nil {
		return fmt.Errorf("write %s: %w", CommitArtifact, err)
	}
	return nil
}

// ReadArtifacts decodes and cross-checks the set stored in dir.
func ReadArtifacts(dir string) (*ArtifactSet, error) {
	a := &ArtifactSet{}
	for _, f := range []struct {
		name string
		dst  any
	}{
		{IndexStoreFile, &a.index},
		{DocStoreFile, &a.docs},
		{VectorStoreFile, &a.vectors},
		{GraphStoreFile, &a.graph},
		{ImageVectorStoreFile, &a.images},
	} {
		if err := readJSON(dir, f.name, f.dst); err != nil {
			return nil, err
		}
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *ArtifactSet) check() error {
	gen := a.index.Generation
	if gen == "" {
		return fmt.Errorf("%w: %s has no generation", ErrInconsistentArtifacts, IndexStoreFile)
	}
	for name, g := range map[string]string{
		DocStoreFile:         a.docs.Generation,
		VectorStoreFile:      a.vectors.Generation,
		GraphStoreFile:       a.graph.Generation,
		ImageVectorStoreFile: a.images.Generation,
	} {
		if g != gen {
			return fmt.Errorf("%w: %s is generation %q, index is %q", ErrInconsistentArtifacts, name, g, gen)
		}
	}
	for _, id := range a.index.DocIDs {
		if _, ok := a.docs.Docs[id]; !ok {
			return fmt.Errorf("%w: document %s missing from %s", ErrInconsistentArtifacts, id, DocStoreFile)
		}
		if len(a.vectors.EmbeddingDict[id]) == 0 {
			return fmt.Errorf("%w: vector %s missing from %s", ErrInconsistentArtifacts, id, VectorStoreFile)
		}
	}
	return nil
}
