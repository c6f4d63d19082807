package learning

import (
	"net/http"
	"net/http/cookiejar"
	"sync"
)

// CookieCache hands out one cookie jar per identity and keeps it for the
// life of the process.
type CookieCache struct {
	mu   sync.Mutex
	jars map[string]http.CookieJar
}

// NewCookieCache creates an empty cache.
func NewCookieCache() *CookieCache {
	return &CookieCache{jars: make(map[string]http.CookieJar)}
}

// Jar returns the jar for identity, creating it on first use.
func (c *CookieCache) Jar(identity string) (http.CookieJar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if jar, ok := c.jars[identity]; ok {
		return jar, nil
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c.jars[identity] = jar
	return jar, nil
}

// Forget drops the jar for identity.
func (c *CookieCache) Forget(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.jars, identity)
}

// Len returns the number of cached jars.
func (c *CookieCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jars)
}
