package statement

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "statements"

// DB defines the interface for database operations
type DB interface {
	// SaveStatement inserts or replaces a statement
	SaveStatement(statement *Statement) error

	// GetStatement retrieves a statement by ID, or ErrNotFound
	GetStatement(id string) (*Statement, error)

	// ListStatements returns all statements, newest first
	ListStatements() ([]*Statement, error)

	// DeleteStatement removes a statement
	DeleteStatement(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func (b *BoltDB) SaveStatement(statement *Statement) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data, err := json.Marshal(statement)
		if err != nil {
			return fmt.Errorf("marshaling statement: %w", err)
		}
		return bucket.Put([]byte(statement.ID), data)
	})
}

func (b *BoltDB) GetStatement(id string) (*Statement, error) {
	var statement *Statement
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &statement)
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}

func (b *BoltDB) ListStatements() ([]*Statement, error) {
	statements := make([]*Statement, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var statement Statement
			if err := json.Unmarshal(v, &statement); err != nil {
				return fmt.Errorf("unmarshaling statement %s: %w", k, err)
			}
			statements = append(statements, &statement)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(statements, func(i, j int) bool {
		return statements[i].CreatedAt.After(statements[j].CreatedAt)
	})
	return statements, nil
}

func (b *BoltDB) DeleteStatement(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
