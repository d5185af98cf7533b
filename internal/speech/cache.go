package speech

import (
	"fmt"
	"sync"
)

// Request describes one utterance. Every field participates in the cache
// key, so identical utterances are never synthesized twice.
type Request struct {
	Text    string  `json:"text"`
	Voice   string  `json:"voice"`
	Emotion string  `json:"emotion"`
	Lang    string  `json:"lang"`
	Speed   float64 `json:"speed"`
}

func (r Request) cacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%.2f|%s", r.Voice, r.Emotion, r.Lang, r.Speed, r.Text)
}

// audioCache keeps synthesized audio keyed by the full request. Entries are
// evicted oldest-first once the cap is reached.
type audioCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	order []string
	max   int
}

func newAudioCache(max int) *audioCache {
	if max <= 0 {
		max = 256
	}
	return &audioCache{data: make(map[string][]byte), max: max}
}

func (c *audioCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *audioCache) Put(key string, audio []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.data[key]; exists {
		c.data[key] = audio
		return
	}
	for len(c.data) >= c.max && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.data, oldest)
	}
	c.data[key] = audio
	c.order = append(c.order, key)
}

func (c *audioCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
