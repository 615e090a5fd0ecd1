package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Codec is a fixed, deterministic token vocabulary. Chunk boundaries are a
// function of the codec: swapping encodings changes boundaries and is a
// breaking change for any persisted index.
type Codec interface {
	Name() string
	Encode(text string) []int
	Decode(tokens []int) string
	Count(text string) int
}

// EncodingCL100K is the BPE encoding used for chunking (GPT-4 vocabulary).
const EncodingCL100K = "cl100k_base"

type bpeCodec struct {
	name string
	enc  *tiktoken.Tiktoken
}

// NewCL100K returns the cl100k_base BPE codec.
func NewCL100K() (Codec, error) {
	return NewBPE(EncodingCL100K)
}

// NewBPE returns a codec for the named tiktoken encoding.
func NewBPE(name string) (Codec, error) {
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", name, err)
	}
	return &bpeCodec{name: name, enc: enc}, nil
}

func (c *bpeCodec) Name() string { return c.name }

func (c *bpeCodec) Encode(text string) []int {
	return c.enc.Encode(text, nil, nil)
}

func (c *bpeCodec) Decode(tokens []int) string {
	return c.enc.Decode(tokens)
}

func (c *bpeCodec) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
