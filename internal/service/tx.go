package service

import (
	"context"
	"errors"

	"cafehenola/internal/apierror"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction. Every read that feeds a balance
// check and every write it implies must go through the tx handed to fn.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// Locker hands out advisory locks that span service instances. Row locks are
// still taken inside every transaction; a Locker only reduces contention.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// bloquear takes the advisory lock for key when a Locker is configured. It never
// fails the request: without the lock the row locks alone serialize writers.
func bloquear(ctx context.Context, l Locker, key string) func() {
	if l == nil {
		return func() {}
	}
	unlock, err := l.Lock(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("no se obtuvo el lock distribuido; se continúa con bloqueo de filas")
		return func() {}
	}
	return unlock
}

// bloquearDe is bloquear for requests that name a record instead of a client:
// the owner is looked up outside the transaction. A failed lookup takes no lock
// and leaves the error to the transaction.
func bloquearDe(ctx context.Context, l Locker, cliente func() (uuid.UUID, error)) func() {
	if l == nil {
		return func() {}
	}
	id, err := cliente()
	if err != nil {
		return func() {}
	}
	return bloquear(ctx, l, claveCliente(id))
}

func claveCliente(id uuid.UUID) string { return "cliente:" + id.String() }

// parseID parses a request uuid, naming the field on failure.
func parseID(campo, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.Validation("%s inválido", campo)
	}
	return id, nil
}

// noEncontrado converts gorm.ErrRecordNotFound into a NotFound error and passes
// any other error through.
func noEncontrado(err error, entidad string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("%s no encontrado", entidad)
	}
	return err
}
