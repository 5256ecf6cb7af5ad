// Package tokens estimates prompt sizes. Counts use the cl100k_base encoding,
// which approximates but does not match every provider's tokenizer.
package tokens

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens in text.
type Counter struct {
	once  sync.Once
	codec tokenizer.Codec
	err   error
}

// NewCounter returns a Counter. The encoding is loaded on first use.
func NewCounter() *Counter {
	return &Counter{}
}

// Count returns the estimated token count of text.
func (c *Counter) Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	c.once.Do(func() {
		c.codec, c.err = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if c.err != nil {
		return 0, fmt.Errorf("load encoding: %w", c.err)
	}

	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	return len(ids), nil
}
