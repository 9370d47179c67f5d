package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	_ "github.com/mattn/go-sqlite3"
)

type (
	Store struct {
		db        *sql.DB
		writeable bool
	}

	Credential struct {
		Slug      string
		Hash      string
		UpdatedAt time.Time
	}
)

var (
	errReadOnly = errors.New("credential store opened as read-only")
)

func openDatabase(ctx context.Context, file string, readwrite bool) (*sql.DB, error) {
	if readwrite {
		err := os.MkdirAll(filepath.Dir(file), 0755)
		if err != nil {
			return nil, fmt.Errorf("unable to create directory to store credentials at %v, cause %w", file, err)
		}
	}
	var connstr string
	if readwrite {
		connstr = fmt.Sprintf("file:%v?_writable_schema=false&_journal=wal&mode=rwc", file)
	} else {
		connstr = fmt.Sprintf("file:%v?_writable_schema=false&mode=ro", file)
	}
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %w", file, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping credential store %v, cause %w", file, err)
	}
	return conn, nil
}

// OpenStore opens the credential database at file. Only a writeable store
// creates the schema, a read-only one expects it to exist already.
func OpenStore(ctx context.Context, file string, readwrite bool) (*Store, error) {
	conn, err := openDatabase(ctx, file, readwrite)
	if err != nil {
		return nil, err
	}
	s := &Store{db: conn, writeable: readwrite}
	if readwrite {
		err = s.init(ctx)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("unable to init credential store %v, cause %w", file, err)
		}
	}
	return s, nil
}

// Upsert stores hash for slug, replacing any previous one.
func (s *Store) Upsert(ctx context.Context, slug, hash string) error {
	if !s.writeable {
		return errReadOnly
	}
	_, err := s.db.ExecContext(ctx, `insert into hashed_pwd(slug, slug_hash64, hash, updated_at) values (?, ?, ?, ?)
		on conflict (slug) do update set hash = excluded.hash, updated_at = excluded.updated_at`,
		slug, slugHash(slug), hash, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("unable to store credential for %v, cause %w", slug, err)
	}
	return nil
}

func (s *Store) Lookup(ctx context.Context, slug string) (Credential, error) {
	c := Credential{Slug: slug}
	var updated int64
	err := s.db.QueryRowContext(ctx, `select hash, updated_at from hashed_pwd where slug_hash64 = ? and slug = ?`,
		slugHash(slug), slug).Scan(&c.Hash, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, CredentialNotFound{Slug: slug}
	} else if err != nil {
		return Credential{}, fmt.Errorf("unable to load credential for %v, cause %w", slug, err)
	}
	c.UpdatedAt = time.Unix(updated, 0).UTC()
	return c, nil
}

// List returns every stored credential ordered by slug.
func (s *Store) List(ctx context.Context) ([]Credential, error) {
	rows, err := s.db.QueryContext(ctx, `select slug, hash, updated_at from hashed_pwd order by slug asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list credentials, cause %w", err)
	}
	defer rows.Close()
	var out []Credential
	for rows.Next() {
		var c Credential
		var updated int64
		err = rows.Scan(&c.Slug, &c.Hash, &updated)
		if err != nil {
			return nil, fmt.Errorf("unable to scan credential, cause %w", err)
		}
		c.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func slugHash(slug string) int64 {
	return int64(xxhash.Sum64String(slug))
}

func (s *Store) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists hashed_pwd(
			slug text not null primary key,
			slug_hash64 integer not null,
			hash text not null,
			updated_at integer not null
		)`,
		`create index if not exists idx_hashed_pwd_slug_hash64
			on hashed_pwd(slug_hash64)`,
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
