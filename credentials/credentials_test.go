package credentials_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrebq/postgate/credentials"
	"github.com/andrebq/postgate/internal/testutil"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *credentials.Store {
	s, cleanup := testutil.AcquireWritableStore(context.Background(), t)
	t.Cleanup(cleanup)
	return s
}

func TestHash(t *testing.T) {
	hash, err := credentials.HashWith(testutil.FastParams, "correct horse", rand.Reader)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"), "unexpected hash format %v", hash)

	ok, err := credentials.Compare(hash, "correct horse")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = credentials.Compare(hash, "battery staple")
	require.NoError(t, err)
	require.False(t, ok)

	other, err := credentials.HashWith(testutil.FastParams, "correct horse", rand.Reader)
	require.NoError(t, err)
	require.NotEqual(t, hash, other, "salts should differ between hashes")
}

func TestHashDeterministicSalt(t *testing.T) {
	salt := bytes.Repeat([]byte{1}, 16)
	hash, err := credentials.HashWith(testutil.FastParams, "pw", bytes.NewReader(salt))
	require.NoError(t, err)
	require.Contains(t, hash, "$AQEBAQEBAQEBAQEBAQEBAQ$")
}

func TestCompareInvalid(t *testing.T) {
	for _, h := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=1024,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=16$m=1024,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=19$m=x,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$AAAA",
	} {
		_, err := credentials.Compare(h, "pw")
		require.ErrorAs(t, err, &credentials.InvalidHash{}, "hash %q", h)
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := tempStore(t)

	_, err := s.Lookup(ctx, "my-post")
	require.ErrorAs(t, err, &credentials.CredentialNotFound{})

	require.NoError(t, s.Upsert(ctx, "my-post", "first"))
	require.NoError(t, s.Upsert(ctx, "other-post", "other"))
	require.NoError(t, s.Upsert(ctx, "my-post", "second"))

	c, err := s.Lookup(ctx, "my-post")
	require.NoError(t, err)
	require.Equal(t, "second", c.Hash)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "my-post", all[0].Slug)
	require.Equal(t, "other-post", all[1].Slug)
}

func TestReadOnlyStore(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "credentials.db")
	s, err := credentials.OpenStore(ctx, file, true)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, "my-post", "hash"))
	require.NoError(t, s.Close())

	s, err = credentials.OpenStore(ctx, file, false)
	require.NoError(t, err)
	defer s.Close()
	c, err := s.Lookup(ctx, "my-post")
	require.NoError(t, err)
	require.Equal(t, "hash", c.Hash)
	require.Error(t, s.Upsert(ctx, "my-post", "other"))
}

func writePost(t *testing.T, dir, name, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadPosts(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "Hello World.md", "---\ntitle: Hello\npassword: secret\n---\n# hello\n")
	writePost(t, dir, "custom.MD", "---\nslug: my-post\npassword: 1234\n---\nbody")
	writePost(t, dir, "public.md", "---\ntitle: Public\n---\nbody")
	writePost(t, dir, "no-front-matter.md", "just text")
	writePost(t, dir, "notes.txt", "---\npassword: ignored\n---\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts.md"), 0755))

	posts, err := credentials.LoadPosts(context.Background(), dir)
	require.NoError(t, err)
	bySlug := map[string]credentials.Post{}
	for _, p := range posts {
		bySlug[p.Slug] = p
	}
	require.Len(t, bySlug, 4)
	require.Equal(t, "secret", bySlug["hello-world"].Password)
	require.Equal(t, "1234", bySlug["my-post"].Password)
	require.Empty(t, bySlug["public"].Password)
	require.Contains(t, bySlug, "no-front-matter")
}

func TestLoadPostsMissingDir(t *testing.T) {
	posts, err := credentials.LoadPosts(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestLoadPostsUnclosedFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "broken.md", "---\npassword: secret\n")
	_, err := credentials.LoadPosts(context.Background(), dir)
	require.Error(t, err)
}

func TestHashPosts(t *testing.T) {
	ctx := context.Background()
	s := tempStore(t)
	posts := []credentials.Post{
		{Slug: "my-post", Password: "correct"},
		{Slug: "public"},
	}
	n, err := credentials.HashPosts(ctx, s, posts, testutil.FastParams, rand.Reader)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	c, err := s.Lookup(ctx, "my-post")
	require.NoError(t, err)
	ok, err := credentials.Compare(c.Hash, "correct")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.Lookup(ctx, "public")
	require.ErrorAs(t, err, &credentials.CredentialNotFound{})
}
