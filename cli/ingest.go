package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/hsmtkk/turbo-octo-pancake/ingest"
	"github.com/hsmtkk/turbo-octo-pancake/localstore"
	"github.com/hsmtkk/turbo-octo-pancake/objectstore"
	"github.com/hsmtkk/turbo-octo-pancake/reader"
)

func newIngestCmd(g *globalFlags) *cobra.Command {
	var (
		out          string
		bucket       string
		chunkSize    int
		chunkOverlap int
	)
	cmd := &cobra.Command{
		Use:   "ingest <data-dir>",
		Short: "Index every document in a directory",
		Long: `Index every document in a directory.

With --out the artifact set is written to a local directory.
With --bucket it is uploaded to the vector bucket the query function reads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (out == "") == (bucket == "") {
				return fmt.Errorf("exactly one of --out or --bucket is required")
			}
			ctx := cmd.Context()
			e, err := g.embedder(ctx)
			if err != nil {
				return err
			}
			splitter := reader.NewSplitter(reader.WithChunkSize(chunkSize), reader.WithChunkOverlap(chunkOverlap))

			if out != "" {
				docs, err := reader.LoadDir(args[0])
				if err != nil {
					return err
				}
				if len(docs) == 0 {
					return ingest.ErrNoDocuments
				}
				idx, err := localstore.Build(ctx, docs, splitter, e)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(out, 0o755); err != nil {
					return err
				}
				if err := idx.Persist(out); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks, generation %s, written to %s\n", idx.Count(), idx.Generation(), out)
				return nil
			}

			cfg, err := awsConfig(ctx)
			if err != nil {
				return err
			}
			scratch, err := os.MkdirTemp("", "linerag-ingest-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(scratch)

			p := ingest.New(objectstore.New(s3.NewFromConfig(cfg)), bucket, e, ingest.WithSplitter(splitter))
			gen, err := p.IngestDir(ctx, args[0], scratch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded generation %s to s3://%s\n", gen, bucket)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the artifact set to this directory")
	cmd.Flags().StringVar(&bucket, "bucket", "", "upload the artifact set to this bucket")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 1024, "splitter chunk size")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 20, "splitter chunk overlap")
	return cmd
}
