package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/callback"
	"github.com/hsmtkk/turbo-octo-pancake/embedding"
	"github.com/hsmtkk/turbo-octo-pancake/llm"
	"github.com/hsmtkk/turbo-octo-pancake/localstore"
	"github.com/hsmtkk/turbo-octo-pancake/objectstore"
	"github.com/hsmtkk/turbo-octo-pancake/query"
)

type askFlags struct {
	dir        string
	bucket     string
	topK       int
	completion string
	model      string
	verbose    bool
	jsonOut    bool
}

func newAskCmd(g *globalFlags) *cobra.Command {
	f := &askFlags{}
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question from an artifact set",
		Long: `Answer a question from an artifact set.

Without an argument the question is read from stdin as {"question": "..."}.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (f.dir == "") == (f.bucket == "") {
				return fmt.Errorf("exactly one of --dir or --bucket is required")
			}
			question, err := readQuestion(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			e, err := g.embedder(ctx)
			if err != nil {
				return err
			}
			idx, err := f.loadIndex(ctx, e)
			if err != nil {
				return err
			}
			completer, err := f.completer(ctx, g)
			if err != nil {
				return err
			}
			resp, err := query.New(idx, completer, query.WithTopK(f.topK)).Answer(ctx, question)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp, f.verbose, f.jsonOut)
		},
	}
	cmd.Flags().StringVar(&f.dir, "dir", "", "read the artifact set from this directory")
	cmd.Flags().StringVar(&f.bucket, "bucket", os.Getenv("VECTOR_BUCKET"), "download the artifact set from this bucket")
	cmd.Flags().IntVar(&f.topK, "top-k", 3, "number of chunks put into the prompt")
	cmd.Flags().StringVar(&f.completion, "completion", envOr("COMPLETION_PROVIDER", linerag.ProviderOpenAI), "completion provider: openai or bedrock")
	cmd.Flags().StringVar(&f.model, "model", envOr("OPENAI_MODEL", "gpt-4"), "OpenAI chat model")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "show the documents used")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print the response as JSON")
	return cmd
}

func (f *askFlags) loadIndex(ctx context.Context, e embedding.Embedder) (query.Retriever, error) {
	if f.dir != "" {
		return localstore.Load(ctx, f.dir, e)
	}
	cfg, err := awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	source := callback.BucketIndex{
		Store:    objectstore.New(s3.NewFromConfig(cfg)),
		Bucket:   f.bucket,
		Embedder: e,
	}
	return source.LoadIndex(ctx)
}

func (f *askFlags) completer(ctx context.Context, g *globalFlags) (llm.Completer, error) {
	cfg := linerag.DefaultConfig()
	cfg.OpenAIModel = f.model
	if f.completion == linerag.ProviderBedrock {
		awsCfg, err := awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return llm.New(f.completion, cfg, "", &awsCfg)
	}
	b, err := g.bundle(ctx)
	if err != nil {
		return nil, err
	}
	return llm.New(f.completion, cfg, b.OpenAIAPIKey, nil)
}

// readQuestion takes the argument when given, otherwise a QueryRequest from r.
func readQuestion(args []string, r io.Reader) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	var req linerag.QueryRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return "", fmt.Errorf("decode question request: %w", err)
	}
	if strings.TrimSpace(req.Question) == "" {
		return "", errors.New("question is empty")
	}
	return req.Question, nil
}

func printResponse(w io.Writer, resp *linerag.Response, verbose, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprintln(w, "Answer:", resp.Answer)
	if !verbose {
		return nil
	}
	fmt.Fprintln(w, "\nThe following documents were used\n============")
	for _, doc := range resp.Documents {
		fmt.Fprintf(w, "Document ID: %s\n", doc.ID)
		fmt.Fprintf(w, "Source: %s\n", doc.Source)
		fmt.Fprintf(w, "Similarity: %.4f\n", doc.Similarity)
		fmt.Fprintf(w, "Content: %s\n\n", doc.Content)
	}
	return nil
}
