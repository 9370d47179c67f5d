package credentials

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrebq/postgate/credentials"
	"github.com/andrebq/postgate/internal/cmdflags"
	"github.com/andrebq/postgate/internal/logutil"
	"github.com/urfave/cli/v2"
)

var (
	errMissingPassword = errors.New("missing password from stdin")
)

func Cmd() *cli.Command {
	var db string
	return &cli.Command{
		Name:    "credentials",
		Aliases: []string{"c"},
		Usage:   "Manage the password hashes of protected posts",
		Flags: []cli.Flag{
			cmdflags.CredentialStore(&db),
		},
		Subcommands: []*cli.Command{
			hashCmd(&db),
			checkCmd(&db),
		},
	}
}

func hashCmd(db *string) *cli.Command {
	postsDir := "src/content/blog"
	return &cli.Command{
		Name:  "hash",
		Usage: "Hash the password of every post that has one and store it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "posts",
				Aliases:     []string{"p"},
				Usage:       "Directory with the markdown posts",
				Value:       postsDir,
				Destination: &postsDir,
			},
		},
		Action: func(ctx *cli.Context) error {
			log := logutil.GetOrDefault(ctx.Context)
			posts, err := credentials.LoadPosts(ctx.Context, postsDir)
			if err != nil {
				return err
			}
			protected := posts[:0]
			for _, p := range posts {
				if len(p.Password) > 0 {
					protected = append(protected, p)
				}
			}
			if len(protected) == 0 {
				log.Info().Msg("No password protected posts found")
				return nil
			}
			store, err := credentials.OpenStore(ctx.Context, *db, true)
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := credentials.HashPosts(ctx.Context, store, protected, credentials.DefaultParams, rand.Reader)
			if err != nil {
				return err
			}
			log.Info().Int("count", n).Msg("Finished hashing all passwords")
			return nil
		},
	}
}

func checkCmd(db *string) *cli.Command {
	var slug string
	return &cli.Command{
		Name:  "check",
		Usage: "Check a password against the stored hash (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "slug",
				Aliases:     []string{"s"},
				Usage:       "Slug of the post",
				Destination: &slug,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}
			store, err := credentials.OpenStore(ctx.Context, *db, false)
			if err != nil {
				return err
			}
			defer store.Close()
			c, err := store.Lookup(ctx.Context, slug)
			if err != nil {
				return err
			}
			ok, err := credentials.Compare(c.Hash, password)
			if err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("password does not match the hash stored for %v", slug)
			}
			fmt.Fprintln(ctx.App.Writer, "ok")
			return nil
		},
	}
}

// readPassword returns the first line of r without its line terminator.
// Surrounding spaces are kept, they are part of the password.
func readPassword(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if sc.Err() != nil {
			return "", sc.Err()
		}
		return "", errMissingPassword
	}
	password := strings.TrimSuffix(sc.Text(), "\r")
	if len(strings.TrimSpace(password)) == 0 {
		return "", errMissingPassword
	}
	return password, nil
}
