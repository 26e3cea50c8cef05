// Package jsondb is a file-backed account storage. The whole dataset is kept
// in memory and rewritten to a JSON file after every insert and on Close.
package jsondb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/patric-chuzhbe/arrowflix/internal/models"
	"github.com/patric-chuzhbe/arrowflix/internal/user"
)

type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

type CacheStruct struct {
	Users     map[string]*user.User
	EmailToID map[string]string
}

// NewCache returns an empty, ready to use cache.
func NewCache() CacheStruct {
	return CacheStruct{
		Users:     map[string]*user.User{},
		EmailToID: map[string]string{},
	}
}

func initDBFile(fileName string) error {
	return writeToJSONFile(fileName, NewCache())
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(jsonData); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New opens the JSON file, creating it when it does not exist yet.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `parseJSONFile()` calling: %w", err)
		}
		if err := initDBFile(fileName); err != nil {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `initDBFile()` calling: %w", err)
		}
	}

	if db.Cache.Users == nil {
		db.Cache.Users = map[string]*user.User{}
	}
	if db.Cache.EmailToID == nil {
		db.Cache.EmailToID = map[string]string{}
	}

	return db, nil
}

// CreateUser stores usr. The email must already be normalized.
// Returns models.ErrUserAlreadyExists when the email is taken.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, taken := db.Cache.EmailToID[usr.Email]; taken {
		return models.ErrUserAlreadyExists
	}

	stored := *usr
	db.Cache.Users[usr.ID] = &stored
	db.Cache.EmailToID[usr.Email] = usr.ID

	if err := db.flush(); err != nil {
		delete(db.Cache.Users, usr.ID)
		delete(db.Cache.EmailToID, usr.Email)
		return err
	}

	return nil
}

func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	id, found := db.Cache.EmailToID[email]
	if !found {
		return nil, false, nil
	}

	return db.userByIDLocked(id)
}

func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.userByIDLocked(userID)
}

func (db *JSONDB) userByIDLocked(userID string) (*user.User, bool, error) {
	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	result := *usr
	return &result, true, nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

func (db *JSONDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.flush()
}

func (db *JSONDB) flush() error {
	if db.fileName == "" {
		return nil
	}

	if err := writeToJSONFile(db.fileName, db.Cache); err != nil {
		return fmt.Errorf("in internal/db/jsondb/jsondb.go/flush(): error while `writeToJSONFile()` calling: %w", err)
	}

	return nil
}
