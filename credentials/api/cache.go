package api

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/andrebq/postgate/credentials"
)

type (
	// HashSource is anything that can return the stored hash of a slug,
	// usually a *credentials.Store.
	HashSource interface {
		Lookup(ctx context.Context, slug string) (credentials.Credential, error)
	}

	cachedSource struct {
		cache  *bigcache.BigCache
		source HashSource
	}
)

// missing slugs are cached too, as an empty entry
var missingEntry = []byte{}

// CachedSource keeps hashes loaded from source in memory for ttl. A ttl of
// zero disables the cache.
func CachedSource(source HashSource, ttl time.Duration) (HashSource, error) {
	if ttl <= 0 {
		return source, nil
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = ttl
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, err
	}
	return &cachedSource{cache: cache, source: source}, nil
}

func (c *cachedSource) Lookup(ctx context.Context, slug string) (credentials.Credential, error) {
	buf, err := c.cache.Get(slug)
	if err == nil {
		if len(buf) == 0 {
			return credentials.Credential{}, credentials.CredentialNotFound{Slug: slug}
		}
		return credentials.Credential{Slug: slug, Hash: string(buf)}, nil
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		return credentials.Credential{}, err
	}

	cred, err := c.source.Lookup(ctx, slug)
	var notFound credentials.CredentialNotFound
	if errors.As(err, &notFound) {
		c.cache.Set(slug, missingEntry)
		return cred, err
	} else if err != nil {
		return cred, err
	}
	c.cache.Set(slug, []byte(cred.Hash))
	return cred, nil
}
