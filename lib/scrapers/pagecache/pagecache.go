// Package pagecache stores scraped pages in badger keyed by a
// normalized url, so slow-moving listings (course lists mostly)
// survive process restarts without refetching.
package pagecache

import (
	"bytes"
	"encoding/gob"
	"net/url"
	"time"

	"campusassist-backend/lib/htmlutil"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
)

var ErrNotFound = badger.ErrKeyNotFound

type Page struct {
	Contents []byte
	Anchors  []htmlutil.Anchor

	ExpiresAt int64
}

type Cache struct {
	db      *badger.DB
	baseUrl *url.URL
	// client id prefixed onto every key so two credentials never
	// share cached pages
	clientId string
}

func New(db *badger.DB, baseUrl *url.URL, clientId string) Cache {
	return Cache{
		db:       db,
		baseUrl:  baseUrl,
		clientId: clientId,
	}
}

func (c Cache) key(endpoint string) (string, error) {
	full, err := c.baseUrl.Parse(endpoint)
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(
		full,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	return c.clientId + ":" + normalized, nil
}

// Get returns the cached page for an endpoint or ErrNotFound. An
// expired page is deleted and reported as not found.
func (c Cache) Get(endpoint string) (Page, error) {
	key, err := c.key(endpoint)
	if err != nil {
		return Page{}, err
	}

	tx := c.db.NewTransaction(false)
	defer tx.Discard()
	item, err := tx.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return Page{}, ErrNotFound
	}
	if err != nil {
		return Page{}, err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		return Page{}, err
	}

	var cached Page
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&cached)
	if err != nil {
		return Page{}, err
	}

	if time.Now().Unix() >= cached.ExpiresAt {
		deleteTx := c.db.NewTransaction(true)
		defer deleteTx.Commit()
		// best effort, a failed delete just means the next read
		// expires it again
		deleteTx.Delete([]byte(key))
		return Page{}, ErrNotFound
	}

	return cached, nil
}

func (c Cache) Set(endpoint string, page Page) error {
	key, err := c.key(endpoint)
	if err != nil {
		return err
	}

	serialized := bytes.NewBuffer(nil)
	err = gob.NewEncoder(serialized).Encode(page)
	if err != nil {
		return err
	}

	tx := c.db.NewTransaction(true)
	defer tx.Commit()
	return tx.Set([]byte(key), serialized.Bytes())
}
