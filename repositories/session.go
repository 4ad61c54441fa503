//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Persisted session state: written at login, cleared at logout, read on
// every outgoing request (bearer token) and on demand (classroom id).
const (
	keyToken   = "session:token"
	keyClassID = "session:classId"
)

type ISessionRepository interface {
	SaveToken(token string) error
	Token() (string, error)
	SaveClassID(classID string) error
	ClassID() (string, error)
	Clear() error
}

type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) SessionRepository {
	return SessionRepository{db: db, log: log}
}

func (r SessionRepository) SaveToken(token string) error {
	return r.set(keyToken, token)
}

// Token returns the stored bearer token, or empty when nothing is stored.
// Absence is a normal state (fresh install, after logout), not an error.
func (r SessionRepository) Token() (string, error) {
	return r.get(keyToken)
}

func (r SessionRepository) SaveClassID(classID string) error {
	return r.set(keyClassID, classID)
}

func (r SessionRepository) ClassID() (string, error) {
	return r.get(keyClassID)
}

func (r SessionRepository) Clear() error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(keyToken)); err != nil {
			return err
		}
		return txn.Delete([]byte(keyClassID))
	})
}

func (r SessionRepository) set(key, value string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (r SessionRepository) get(key string) (string, error) {
	var value string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	return value, err
}
