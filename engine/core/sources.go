package core

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSourceCacheSize bounds the number of documents kept per engine.
const DefaultSourceCacheSize = 64

// SourceCache remembers the text of recently run documents so frames whose
// diagnostic carries no source line can still get a fragment.
type SourceCache struct {
	docs *lru.Cache[string, string]
}

func NewSourceCache(size int) *SourceCache {
	if size <= 0 {
		size = DefaultSourceCacheSize
	}
	docs, err := lru.New[string, string](size)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &SourceCache{docs: docs}
}

// Remember stores the source of documentName. The empty name holds the most
// recent anonymous script.
func (c *SourceCache) Remember(documentName, source string) {
	if c == nil {
		return
	}
	c.docs.Add(documentName, source)
}

// Line returns the raw text of a 1-based line of a remembered document.
func (c *SourceCache) Line(documentName string, line int) (string, bool) {
	if c == nil {
		return "", false
	}
	source, ok := c.docs.Get(documentName)
	if !ok {
		return "", false
	}
	text := SourceLine(source, line)
	return text, text != ""
}

func (c *SourceCache) Len() int {
	if c == nil {
		return 0
	}
	return c.docs.Len()
}

func (c *SourceCache) Purge() {
	if c == nil {
		return
	}
	c.docs.Purge()
}
