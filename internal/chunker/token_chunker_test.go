package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

// wordCodec tokenizes on whitespace, one token per word. Deterministic and
// cheap, which keeps window boundaries easy to assert on.
type wordCodec struct {
	vocab map[string]int
	words []string
}

func newWordCodec() *wordCodec {
	return &wordCodec{vocab: make(map[string]int)}
}

func (c *wordCodec) Name() string { return "word" }

func (c *wordCodec) Encode(text string) []int {
	fields := strings.Fields(text)
	ids := make([]int, 0, len(fields))
	for _, w := range fields {
		id, ok := c.vocab[w]
		if !ok {
			id = len(c.words)
			c.vocab[w] = id
			c.words = append(c.words, w)
		}
		ids = append(ids, id)
	}
	return ids
}

func (c *wordCodec) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, id := range tokens {
		words[i] = c.words[id]
	}
	return strings.Join(words, " ")
}

func (c *wordCodec) Count(text string) int { return len(strings.Fields(text)) }

func wordsDoc(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "w%d", i)
	}
	return sb.String()
}

func TestNewTokenChunker_RejectsBadConfig(t *testing.T) {
	codec := newWordCodec()
	for _, tc := range []struct{ size, overlap int }{
		{0, 0},
		{-1, 0},
		{100, -1},
		{100, 100},
		{100, 150},
	} {
		_, err := NewTokenChunker(codec, tc.size, tc.overlap)
		require.ErrorIs(t, err, domain.ErrInvalidChunkConfig, "size=%d overlap=%d", tc.size, tc.overlap)
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c, err := NewTokenChunker(newWordCodec(), 500, 50)
	require.NoError(t, err)

	require.Nil(t, c.Chunk("u1", "doc.txt", "", "en"))
	require.Nil(t, c.Chunk("u1", "doc.txt", "   \n\t ", "en"))
}

func TestChunk_SingleChunkWhenUnderLimit(t *testing.T) {
	codec := newWordCodec()
	c, err := NewTokenChunker(codec, 20, 5)
	require.NoError(t, err)

	text := wordsDoc(10)
	chunks := c.Chunk("u1", "doc.txt", text, "en")
	require.Len(t, chunks, 1)

	ch := chunks[0]
	require.Equal(t, "u1", ch.TenantID)
	require.Equal(t, "doc.txt", ch.DocumentName)
	require.Equal(t, 0, ch.ChunkIndex)
	require.Equal(t, codec.Decode(codec.Encode(text)), ch.Text)
	require.Equal(t, 10, ch.TokenCount)
	require.Equal(t, domain.MethodSingleChunk, ch.Metadata[domain.MetaChunkMethod])
	require.Equal(t, 10, ch.Metadata[domain.MetaTotalTokens])
	require.Equal(t, "en", ch.Metadata[domain.MetaLanguage])
}

func TestChunk_OverlappingBoundaries(t *testing.T) {
	c, err := NewTokenChunker(newWordCodec(), 500, 50)
	require.NoError(t, err)

	chunks := c.Chunk("u1", "big.txt", wordsDoc(1200), "")
	require.Len(t, chunks, 3)

	want := []struct{ start, end int }{
		{0, 500},
		{450, 950},
		{900, 1200},
	}
	for i, w := range want {
		ch := chunks[i]
		require.Equal(t, i, ch.ChunkIndex)
		require.Equal(t, w.start, ch.Metadata[domain.MetaStartToken])
		require.Equal(t, w.end, ch.Metadata[domain.MetaEndToken])
		require.Equal(t, w.end-w.start, ch.TokenCount)
		require.Equal(t, domain.MethodOverlapping, ch.Metadata[domain.MetaChunkMethod])
		require.Equal(t, 1200, ch.Metadata[domain.MetaTotalTokens])
	}
}

func TestChunk_CountMatchesFormula(t *testing.T) {
	const size, overlap = 100, 20
	c, err := NewTokenChunker(newWordCodec(), size, overlap)
	require.NoError(t, err)

	for _, n := range []int{101, 150, 180, 250, 500, 999, 1000, 1201} {
		chunks := c.Chunk("u1", "doc.txt", wordsDoc(n), "")
		step := size - overlap
		wantCount := (n - overlap + step - 1) / step
		require.Len(t, chunks, wantCount, "n=%d", n)

		// Windows cover [0, n) and adjacent windows overlap by exactly
		// the configured amount, except possibly the final one.
		prevEnd := 0
		for i, ch := range chunks {
			start := ch.Metadata[domain.MetaStartToken].(int)
			end := ch.Metadata[domain.MetaEndToken].(int)
			if i == 0 {
				require.Equal(t, 0, start)
			} else if i < len(chunks)-1 {
				require.Equal(t, prevEnd-overlap, start)
			} else {
				require.LessOrEqual(t, start, prevEnd)
			}
			require.LessOrEqual(t, end-start, size)
			prevEnd = end
		}
		require.Equal(t, n, prevEnd, "n=%d", n)
	}
}
