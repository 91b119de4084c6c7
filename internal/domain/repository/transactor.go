package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands out connections to the shared store. Repositories take the
// *gorm.DB per call so usecases decide the transaction boundary.
type Transactor interface {
	Conn(ctx context.Context) *gorm.DB
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
