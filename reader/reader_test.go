package reader_test

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"

	"github.com/hsmtkk/turbo-octo-pancake/reader"
)

const guide = "---\n" +
	"title: Deploying the bot\n" +
	"author: ops\n" +
	"tags: [line, lambda]\n" +
	"---\n" +
	"# Guide\n" +
	"\n" +
	"Intro paragraph with `code`.\n" +
	"\n" +
	"## Setup\n" +
	"\n" +
	"- install go\n" +
	"- run tests\n" +
	"\n" +
	"```sh\n" +
	"make build\n" +
	"```\n"

func TestParseMarkdown(t *testing.T) {
	_, body, err := reader.SplitFrontMatter([]byte(guide))
	assert.NilError(t, err)

	blocks := reader.ParseMarkdown(body)
	assert.Equal(t, len(blocks), 3)
	assert.Equal(t, blocks[0], "Guide\nIntro paragraph with code.")
	assert.Equal(t, blocks[1], "Setup\n- install go\n- run tests")
	assert.Equal(t, blocks[2], "make build")
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantTitle string
		wantBody  string
		wantMeta  bool
	}{
		{
			name:      "with front matter",
			source:    "---\ntitle: Hello\ndate: 2024-03-04\n---\nbody text\n",
			wantTitle: "Hello",
			wantBody:  "body text\n",
			wantMeta:  true,
		},
		{
			name:     "empty front matter",
			source:   "---\n---\nbody\n",
			wantBody: "body\n",
			wantMeta: true,
		},
		{
			name:     "no front matter",
			source:   "# Title\n",
			wantBody: "# Title\n",
		},
		{
			name:     "unterminated",
			source:   "---\ntitle: x\nbody\n",
			wantBody: "---\ntitle: x\nbody\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := reader.SplitFrontMatter([]byte(tt.source))
			assert.NilError(t, err)
			assert.Equal(t, string(body), tt.wantBody)
			assert.Equal(t, meta != nil, tt.wantMeta)
			if meta != nil {
				assert.Equal(t, meta.Title, tt.wantTitle)
			}
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := fs.NewDir(t, "data",
		fs.WithFile("b-guide.md", guide),
		fs.WithFile("a-notes.txt", "The office opens at 9am."),
		fs.WithFile("c-blob.bin", "", fs.WithBytes([]byte{0xff, 0xfe, 0x00, 0x81})),
		fs.WithDir("nested", fs.WithFile("ignored.txt", "nested files are not read")),
	)

	docs, err := reader.LoadDir(dir.Path())
	assert.NilError(t, err)
	assert.Equal(t, len(docs), 2)

	assert.Equal(t, docs[0].Metadata[reader.MetaSource], "a-notes.txt")
	assert.Equal(t, docs[0].Text, "The office opens at 9am.")

	assert.Equal(t, docs[1].Metadata[reader.MetaSource], "b-guide.md")
	assert.Equal(t, docs[1].Metadata[reader.MetaTitle], "Deploying the bot")
	assert.Assert(t, strings.HasPrefix(docs[1].Text, "Guide\nIntro paragraph"))
	assert.Assert(t, !strings.Contains(docs[1].Text, "author"))
}

func TestCompressChunks(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		size   int
		want   []string
	}{
		{
			name:   "combine small",
			chunks: []string{"aaaa", "bbbb", "cccc"},
			size:   6,
			want:   []string{"aaaa\nbbbb", "cccc"},
		},
		{
			name:   "all large",
			chunks: []string{"aaaaaaa", "bbbbbbb"},
			size:   6,
			want:   []string{"aaaaaaa", "bbbbbbb"},
		},
		{
			name:   "last group flushed",
			chunks: []string{"a", "b", "c"},
			size:   100,
			want:   []string{"a\nb\nc"},
		},
		{
			name:   "disabled",
			chunks: []string{"a", "b"},
			size:   0,
			want:   []string{"a", "b"},
		},
		{
			name:   "empty",
			chunks: nil,
			size:   10,
			want:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reader.CompressChunks(tt.chunks, tt.size)
			if tt.want == nil {
				assert.Assert(t, got == nil)
				return
			}
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestSplit(t *testing.T) {
	s := reader.NewSplitter(reader.WithChunkSize(200), reader.WithChunkOverlap(0), reader.WithMinSize(0))

	chunks, err := s.Split("   ")
	assert.NilError(t, err)
	assert.Equal(t, len(chunks), 0)

	chunks, err = s.Split("  short text  ")
	assert.NilError(t, err)
	assert.DeepEqual(t, chunks, []string{"short text"})

	long := strings.Repeat("The quick brown fox jumps over the lazy dog.\n\n", 20)
	chunks, err = s.Split(long)
	assert.NilError(t, err)
	assert.Assert(t, len(chunks) > 1)
	for _, c := range chunks {
		assert.Assert(t, len(c) <= 200, "chunk too long: %d", len(c))
	}
}
