// Package badger is an embedded, persistent db.Store. Hashes and index
// definitions live in BadgerDB; queries run through the local evaluator.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/restodex/internal/db"
	"github.com/kailas-cloud/restodex/internal/db/local"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Key prefixes inside the Badger keyspace.
const (
	hashPrefix  = "hash:"
	indexPrefix = "index:"
)

// Config holds the database location.
type Config struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
}

// Store implements db.Store on top of BadgerDB.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// zapLogger adapts zap to badger.Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*zapLogger)(nil)

func (l *zapLogger) Errorf(msg string, items ...any)   { l.s.Errorf(msg, items...) }
func (l *zapLogger) Warningf(msg string, items ...any) { l.s.Warnf(msg, items...) }
func (l *zapLogger) Infof(msg string, items ...any)    { l.s.Infof(msg, items...) }
func (l *zapLogger) Debugf(msg string, items ...any)   { l.s.Debugf(msg, items...) }

// NewStore opens (or creates) a Badger database.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("path is required")
		}
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = &zapLogger{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb, logger: logger}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Ping fails once the database is closed.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("badger close failed", zap.Error(err))
	}
}

// WaitForReady returns immediately: an opened database is ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// HSet merges fields into the hash at key.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		h, err := getHash(txn, key)
		if errors.Is(err, db.ErrKeyNotFound) {
			h = make(map[string]string, len(fields))
		} else if err != nil {
			return err
		}
		for k, v := range fields {
			h[k] = v
		}
		return setJSON(txn, hashPrefix+key, h)
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of the hash at key.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	var h map[string]string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		h, err = getHash(txn, key)
		return err
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return h, nil
}

// Del removes the hash at key.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(hashPrefix + key)); err != nil {
			return translate(err)
		}
		return txn.Delete([]byte(hashPrefix + key))
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists reports whether a hash is stored at key.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(hashPrefix + key))
		switch {
		case err == nil:
			found = true
			return nil
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return found, nil
}

// CreateIndex persists an index definition.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(indexPrefix + def.Name))
		if err == nil {
			return db.ErrIndexExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, indexPrefix+def.Name, def)
	})
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an index definition, keeping the documents.
func (s *Store) DropIndex(_ context.Context, name string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(indexPrefix + name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return db.ErrIndexNotFound
			}
			return err
		}
		return txn.Delete([]byte(indexPrefix + name))
	})
	if err != nil {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists reports whether an index definition is stored.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getIndex(txn, name)
		return err
	})
	if errors.Is(err, db.ErrIndexNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// Search runs a scored query over the documents covered by the index.
func (s *Store) Search(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	def, docs, err := s.snapshot(q.IndexName)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	res, err := local.Search(def, docs, q)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return res, nil
}

// SearchList returns indexed documents in key order.
func (s *Store) SearchList(_ context.Context, index string, offset, limit int) (*db.SearchResult, error) {
	def, docs, err := s.snapshot(index)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return local.List(def, docs, offset, limit), nil
}

// snapshot loads the index definition and the documents under its prefixes
// from one read transaction.
func (s *Store) snapshot(index string) (*db.IndexDefinition, []local.Document, error) {
	var (
		def  *db.IndexDefinition
		docs []local.Document
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		def, err = getIndex(txn, index)
		if err != nil {
			return err
		}

		prefixes := def.Prefixes
		if len(prefixes) == 0 {
			prefixes = []string{""}
		}
		for _, p := range prefixes {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(hashPrefix + p)
			it := txn.NewIterator(opts)
			for it.Rewind(); it.Valid(); it.Next() {
				item := it.Item()
				var h map[string]string
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &h)
				}); err != nil {
					it.Close()
					return err
				}
				key := string(item.Key()[len(hashPrefix):])
				docs = append(docs, local.Document{Key: key, Fields: h})
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return def, dedupe(docs), nil
}

// dedupe drops repeats produced by overlapping prefixes.
func dedupe(docs []local.Document) []local.Document {
	seen := make(map[string]bool, len(docs))
	out := docs[:0]
	for _, d := range docs {
		if !seen[d.Key] {
			seen[d.Key] = true
			out = append(out, d)
		}
	}
	return out
}

func getHash(txn *badger.Txn, key string) (map[string]string, error) {
	item, err := txn.Get([]byte(hashPrefix + key))
	if err != nil {
		return nil, translate(err)
	}
	var h map[string]string
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &h)
	}); err != nil {
		return nil, fmt.Errorf("decode hash %s: %w", key, err)
	}
	return h, nil
}

func getIndex(txn *badger.Txn, name string) (*db.IndexDefinition, error) {
	item, err := txn.Get([]byte(indexPrefix + name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrIndexNotFound
	}
	if err != nil {
		return nil, err
	}
	var def db.IndexDefinition
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &def)
	}); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", name, err)
	}
	return &def, nil
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func translate(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return db.ErrKeyNotFound
	}
	return err
}
