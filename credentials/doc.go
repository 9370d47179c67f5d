// Package credentials keeps the password hashes of protected posts.
//
// Posts are plain markdown files, the ones that should be protected carry
// a `password` field in their front matter. The hash program reads them,
// extends every password with Argon2id and stores only the encoded hash
// in a sqlite database, keyed by the post slug.
//
// The plaintext never leaves the machine running the hash program, and the
// database never holds anything that could be turned back into a password.
//
// The gate itself never opens this database, it only asks a verifier
// (see credentials/api) whether a candidate matches the hash of a slug.
package credentials
