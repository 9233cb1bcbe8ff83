// Package featurecache stores extracted spectrogram images on disk, keyed by
// the source file identity and the analysis parameters.
package featurecache

import "crypto/sha256"
import "errors"
import "fmt"
import "log/slog"
import "os"

import badger "github.com/dgraph-io/badger/v4"
import "github.com/vmihailenco/msgpack/v5"
import "gorgonia.org/tensor"

import "github.com/neurlang/fetalheart/spectrogram"

// ErrMiss is returned by Get when nothing is cached under the key
var ErrMiss = errors.New("featurecache: miss")

const keyPrefix = "feature/"

// Key identifies one extracted image
type Key struct {
	Path       string             `msgpack:"path"`
	Size       int64              `msgpack:"size"`
	ModTime    int64              `msgpack:"mtime"`
	Params     spectrogram.Params `msgpack:"params"`
	SampleRate int                `msgpack:"rate"`
	Shape      []int              `msgpack:"shape"`
}

// NewKey builds the key of the image of the file at path. The file is
// stat'ed so that a changed file misses the cache.
func NewKey(path string, params spectrogram.Params, sampleRate int, shape ...int) (Key, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Key{}, err
	}
	return Key{
		Path:       path,
		Size:       fi.Size(),
		ModTime:    fi.ModTime().UnixNano(),
		Params:     params,
		SampleRate: sampleRate,
		Shape:      shape,
	}, nil
}

func (k *Key) bytes() ([]byte, error) {
	b, err := msgpack.Marshal(k)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(b)
	return append([]byte(keyPrefix), sum[:]...), nil
}

type entry struct {
	Shape []int     `msgpack:"shape"`
	Data  []float32 `msgpack:"data"`
}

// Cache is a badger backed feature cache, safe for concurrent use
type Cache struct {
	db *badger.DB
}

// Open opens or creates the cache in dir. An empty dir keeps the cache in memory.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(logger{slog.Default()})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("featurecache: open %q: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached image under k, or ErrMiss
func (c *Cache) Get(k Key) (*tensor.Dense, error) {
	key, err := k.bytes()
	if err != nil {
		return nil, err
	}
	var e entry
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("featurecache: get %s: %w", k.Path, err)
	}
	size := 1
	for _, d := range e.Shape {
		size *= d
	}
	if len(e.Shape) == 0 || size != len(e.Data) {
		return nil, fmt.Errorf("featurecache: corrupt entry for %s", k.Path)
	}
	return tensor.New(tensor.WithShape(e.Shape...), tensor.WithBacking(e.Data)), nil
}

// Put stores img under k
func (c *Cache) Put(k Key, img *tensor.Dense) error {
	key, err := k.bytes()
	if err != nil {
		return err
	}
	val, err := msgpack.Marshal(&entry{
		Shape: []int(img.Shape()),
		Data:  img.Data().([]float32),
	})
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// logger routes badger warnings and errors to slog
type logger struct {
	l *slog.Logger
}

func (b logger) Errorf(f string, v ...interface{}) {
	b.l.Error(fmt.Sprintf(f, v...), "component", "badger")
}
func (b logger) Warningf(f string, v ...interface{}) {
	b.l.Warn(fmt.Sprintf(f, v...), "component", "badger")
}
func (logger) Infof(string, ...interface{})  {}
func (logger) Debugf(string, ...interface{}) {}
