package leveldb

/*
   Copyright 2020 The linkrun authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

import (
	"os"
	"path/filepath"

	"github.com/linkrun/linkrun"
	ldb "github.com/syndtr/goleveldb/leveldb"
	ldbopt "github.com/syndtr/goleveldb/leveldb/opt"
	ldbutil "github.com/syndtr/goleveldb/leveldb/util"
)

var (
	dopt *ldbopt.Options
	wopt *ldbopt.WriteOptions
	ropt *ldbopt.ReadOptions
)

// make sure we implement the needed interfaces
var _ linkrun.Store = (*DB)(nil)
var _ linkrun.Remover = (*DB)(nil)

// DB is a durable leveldb key value capture store
type DB struct {
	name string
	db   *ldb.DB
	path string
}

// Open a leveldb store with the given name under the given directory.
func Open(name, dir string) (store *DB, err error) {
	store = &DB{}
	store.name = name
	store.path = filepath.Join(dir, name)

	store.db, err = ldb.OpenFile(store.path, dopt)
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Remove closes the store and erases its contents
func (d *DB) Remove() (err error) {
	if err = d.Close(); err != nil {
		return err
	}
	return os.RemoveAll(d.path)
}

// Close the store releasing its resources.
func (d *DB) Close() (err error) {
	err = d.db.Close()
	d.db = nil
	return err
}

// Name returns this store name.
func (d *DB) Name() (name string) {
	return d.name
}

// Get value for the given key.
func (d *DB) Get(key []byte) (value []byte, err error) {
	value, err = d.db.Get(key, ropt)

	if err == ldb.ErrNotFound {
		return nil, linkrun.ErrKeyNotFound
	}

	return value, err
}

// Set value for the given key.
func (d *DB) Set(key, value []byte) (err error) {
	return d.db.Put(key, value, wopt)
}

// Delete value for the given key.
func (d *DB) Delete(key []byte) (err error) {
	return d.db.Delete(key, wopt)
}

// Range iterates the store within the given key range applying the callback
// for the key value pairs. Returning a error causes the iteration to stop.
// A nil from or to sets the iterator to the begining or end of Store.
// Setting both from and to as nil iterates the whole store
func (d *DB) Range(from, to []byte, cb func(key, value []byte) error) (err error) {
	rng := &ldbutil.Range{Start: from, Limit: to}
	iter := d.db.NewIterator(rng, ropt)
	defer iter.Release()

	for iter.Next() {
		if err = cb(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}

	return iter.Error()
}

// RangePrefix iterates the store over a key prefix applying the callback
// for the key value pairs. Returning a error causes the iteration to stop.
func (d *DB) RangePrefix(prefix []byte, cb func(key, value []byte) error) (err error) {
	iter := d.db.NewIterator(ldbutil.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		if err = cb(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}

	return iter.Error()
}
