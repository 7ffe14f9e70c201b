package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/storedesk/storedesk/internal/shared/errors"
)

// classify turns a raw gorm or driver error into a typed error: not found,
// conflict, schema or transient. Existing AppErrors pass through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return err
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NewNotFoundError(op + ": record not found")
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTransientStoreError(op, err)
	}
	if errors.IsDuplicateError(err) {
		return errors.NewConflictError(op+": duplicate key", err.Error())
	}
	if errors.IsSchemaMismatch(err) {
		return errors.NewSchemaError(op, err)
	}
	return errors.NewTransientStoreError(op, err)
}
