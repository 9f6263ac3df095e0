package storage

import "errors"

var ErrKeyNotFound = errors.New("signing key not found")

type KeyRepository interface {
	Load() ([]byte, error)
	Save(pemData []byte) error
}
