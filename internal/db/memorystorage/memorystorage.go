package memorystorage

import (
	"github.com/patric-chuzhbe/arrowflix/internal/db/jsondb"
)

// MemoryStorage is the JSON storage without a backing file. Data lives for the
// lifetime of the process.
type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.NewCache(),
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
