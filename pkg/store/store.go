// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package store

import (
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/go-truthtree/pkg/tree"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no tree is stored under a given name.
var ErrNotFound = errors.New("tree not found")

// Entry describes a named tree held in a library.
type Entry struct {
	// Name under which the tree is stored.
	Name string
	// Digest of the serialized tree (hex-encoded BLAKE3).
	Digest string
	// Size of the serialized tree in bytes, before compression.
	Size int64
	// Time at which the name was last written.
	Updated time.Time
}

// Library is a SQLite-backed collection of named truth trees.  Serialized
// trees are content-addressed by their BLAKE3 digest and stored compressed,
// so that identical trees stored under different names share a blob.  A
// library is safe for concurrent use.
type Library struct {
	conn    *sql.DB
	path    string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens (or creates) a library at the given path.
func Open(path string) (*Library, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}
	//
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// Apply schema
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	//
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	//
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		conn.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	//
	return &Library{conn, path, encoder, decoder}, nil
}

// Path returns the file backing this library.
func (p *Library) Path() string {
	return p.path
}

// Close releases the database connection.
func (p *Library) Close() error {
	p.decoder.Close()
	//
	if err := p.encoder.Close(); err != nil {
		p.conn.Close()
		return err
	}
	//
	return p.conn.Close()
}

// Digest computes the content address of some serialized tree.
func Digest(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Put stores a tree under a given name, replacing whatever was there before,
// and returns the digest of its serialized form.
func (p *Library) Put(name string, t *tree.Tree) (string, error) {
	if name == "" {
		return "", errors.New("empty tree name")
	}
	//
	data, err := t.Serialize()
	if err != nil {
		return "", fmt.Errorf("serializing tree: %w", err)
	}
	//
	digest := Digest(data)
	blob := p.encoder.EncodeAll(data, nil)
	//
	tx, err := p.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	//
	if _, err = tx.Exec(`INSERT OR IGNORE INTO blobs (digest, size, data) VALUES (?, ?, ?)`,
		digest, len(data), blob); err != nil {
		return "", fmt.Errorf("inserting blob: %w", err)
	}
	//
	if _, err = tx.Exec(`INSERT INTO trees (name, digest, updated) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET digest = excluded.digest, updated = excluded.updated`,
		name, digest, time.Now().UnixMilli()); err != nil {
		return "", fmt.Errorf("updating tree %q: %w", name, err)
	}
	//
	if err = collect(tx); err != nil {
		return "", err
	}
	//
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	//
	log.Debugf("stored tree %q as %s (%d bytes, %d compressed)", name, digest, len(data), len(blob))
	//
	return digest, nil
}

// Load returns the serialized form of the tree stored under a given name.
func (p *Library) Load(name string) ([]byte, error) {
	var (
		digest string
		blob   []byte
	)
	//
	err := p.conn.QueryRow(`SELECT b.digest, b.data FROM trees t JOIN blobs b ON t.digest = b.digest
		WHERE t.name = ?`, name).Scan(&digest, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	} else if err != nil {
		return nil, fmt.Errorf("querying tree %q: %w", name, err)
	}
	//
	data, err := p.decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing tree %q: %w", name, err)
	}
	// Sanity check the blob is what it claims to be
	if actual := Digest(data); actual != digest {
		return nil, fmt.Errorf("tree %q is corrupt (digest %s, expected %s)", name, actual, digest)
	}
	//
	return data, nil
}

// Get loads the tree stored under a given name, using the given parser for
// the text of its nodes.
func (p *Library) Get(name string, parser tree.Parser) (*tree.Tree, error) {
	data, err := p.Load(name)
	if err != nil {
		return nil, err
	}
	//
	t, err := tree.Deserialize(data, parser)
	if err != nil {
		return nil, fmt.Errorf("loading tree %q: %w", name, err)
	}
	//
	return t, nil
}

// List returns every entry in the library, ordered by name.
func (p *Library) List() ([]Entry, error) {
	rows, err := p.conn.Query(`SELECT t.name, t.digest, b.size, t.updated FROM trees t
		JOIN blobs b ON t.digest = b.digest ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("listing trees: %w", err)
	}
	defer rows.Close()
	//
	var entries []Entry
	//
	for rows.Next() {
		var (
			entry   Entry
			updated int64
		)
		//
		if err := rows.Scan(&entry.Name, &entry.Digest, &entry.Size, &updated); err != nil {
			return nil, fmt.Errorf("scanning tree: %w", err)
		}
		//
		entry.Updated = time.UnixMilli(updated)
		entries = append(entries, entry)
	}
	//
	return entries, rows.Err()
}

// Delete removes the tree stored under a given name.  Blobs no longer
// referenced by any name are discarded.
func (p *Library) Delete(name string) error {
	tx, err := p.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	//
	result, err := tx.Exec(`DELETE FROM trees WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting tree %q: %w", name, err)
	}
	//
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("deleting tree %q: %w", name, err)
	} else if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	//
	if err = collect(tx); err != nil {
		return err
	}
	//
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	//
	return nil
}

// Blobs returns the number of distinct serialized trees held in the library.
func (p *Library) Blobs() (int, error) {
	var count int
	//
	if err := p.conn.QueryRow(`SELECT COUNT(*) FROM blobs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting blobs: %w", err)
	}
	//
	return count, nil
}

// Discard any blobs which are no longer referenced by a name.
func collect(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM blobs WHERE digest NOT IN (SELECT digest FROM trees)`); err != nil {
		return fmt.Errorf("collecting blobs: %w", err)
	}
	//
	return nil
}
