package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrebq/postgate/internal/logutil"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

type (
	Post struct {
		Slug     string
		Password string
		File     string
	}

	frontMatter struct {
		Slug     string `yaml:"slug"`
		Password string `yaml:"password"`
	}
)

var (
	fmDelimiter = []byte("---")
)

// LoadPosts reads every markdown file directly under dir. A missing dir is
// not an error, there is simply nothing to protect.
func LoadPosts(ctx context.Context, dir string) ([]Post, error) {
	log := logutil.GetOrDefault(ctx)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Error().Str("dir", dir).Msg("Posts directory not found")
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to list posts in %v, cause %w", dir, err)
	}
	var out []Post
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ".md" {
			continue
		}
		file := filepath.Join(dir, e.Name())
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("unable to read post %v, cause %w", file, err)
		}
		fm, err := parseFrontMatter(content)
		if err != nil {
			return nil, fmt.Errorf("unable to parse front matter of %v, cause %w", file, err)
		}
		p := Post{Slug: fm.Slug, Password: fm.Password, File: file}
		if p.Slug == "" {
			p.Slug = slug.Make(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		}
		out = append(out, p)
	}
	return out, nil
}

// parseFrontMatter extracts the yaml block delimited by --- lines at the
// top of a post. Posts without one have an empty front matter.
func parseFrontMatter(content []byte) (frontMatter, error) {
	var fm frontMatter
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	first, rest, found := bytes.Cut(content, []byte("\n"))
	if !found || !bytes.Equal(bytes.TrimSpace(first), fmDelimiter) {
		return fm, nil
	}
	var block bytes.Buffer
	closed := false
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = bytes.Cut(rest, []byte("\n"))
		if bytes.Equal(bytes.TrimSpace(line), fmDelimiter) {
			closed = true
			break
		}
		block.Write(line)
		block.WriteByte('\n')
	}
	if !closed {
		return fm, errors.New("front matter is not closed")
	}
	err := yaml.NewDecoder(&block).Decode(&fm)
	if errors.Is(err, io.EOF) {
		return fm, nil
	}
	return fm, err
}

// HashPosts stores the hash of every post that has a password and returns
// how many were stored.
func HashPosts(ctx context.Context, store *Store, posts []Post, params Params, rand io.Reader) (int, error) {
	log := logutil.GetOrDefault(ctx)
	count := 0
	for _, p := range posts {
		if len(p.Password) == 0 {
			continue
		}
		hash, err := HashWith(params, p.Password, rand)
		if err != nil {
			return count, fmt.Errorf("unable to hash password of %v, cause %w", p.Slug, err)
		}
		err = store.Upsert(ctx, p.Slug, hash)
		if err != nil {
			return count, err
		}
		log.Info().Str("slug", p.Slug).Msg("Password hashed")
		count++
	}
	return count, nil
}
