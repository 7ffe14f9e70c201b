// Package inventory serves reads and edits of the catalogue tables and the
// sales history.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	domainInventory "github.com/storedesk/storedesk/internal/domain/inventory"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

type Service struct {
	repo   domainInventory.Repository
	logger logger.Interface
}

func NewService(repo domainInventory.Repository, log logger.Interface) *Service {
	return &Service{repo: repo, logger: log.With("component", "inventory_service")}
}

func (s *Service) ListRecords(ctx context.Context, table, legacyKey string) ([]*domainInventory.StoredRecord, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	return s.repo.ListRecords(ctx, table, legacyKey)
}

func (s *Service) GetRecord(ctx context.Context, table, id string) (*domainInventory.StoredRecord, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	return s.repo.GetRecord(ctx, table, id)
}

func (s *Service) CreateRecord(ctx context.Context, table, legacyKey string, payload json.RawMessage) (*domainInventory.StoredRecord, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := checkPayload(payload); err != nil {
		return nil, err
	}
	rec, err := s.repo.CreateRecord(ctx, table, domainInventory.Record{LegacyKey: legacyKey, Payload: payload})
	if err != nil {
		s.logger.Errorw("failed to create record", "table", table, "error", err)
		return nil, err
	}
	s.logger.Infow("record created", "table", table, "id", rec.ID)
	return rec, nil
}

func (s *Service) UpdateRecord(ctx context.Context, table, id string, payload json.RawMessage) (*domainInventory.StoredRecord, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := checkPayload(payload); err != nil {
		return nil, err
	}
	rec, err := s.repo.UpdateRecord(ctx, table, id, payload)
	if err != nil {
		if !errors.IsNotFoundError(err) {
			s.logger.Errorw("failed to update record", "table", table, "id", id, "error", err)
		}
		return nil, err
	}
	s.logger.Infow("record updated", "table", table, "id", id)
	return rec, nil
}

func (s *Service) DeleteRecord(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if err := s.repo.DeleteRecord(ctx, table, id); err != nil {
		if !errors.IsNotFoundError(err) {
			s.logger.Errorw("failed to delete record", "table", table, "id", id, "error", err)
		}
		return err
	}
	s.logger.Infow("record deleted", "table", table, "id", id)
	return nil
}

func (s *Service) ListSales(ctx context.Context) ([]*domainInventory.Sale, error) {
	return s.repo.ListSales(ctx)
}

func (s *Service) GetSale(ctx context.Context, receiptNumber string) (*domainInventory.Sale, error) {
	return s.repo.GetSale(ctx, receiptNumber)
}

// RecordSale stores a completed checkout. A receipt number already on file
// is a conflict.
func (s *Service) RecordSale(ctx context.Context, sale domainInventory.Sale) (*domainInventory.Sale, error) {
	if sale.ReceiptNumber == "" {
		return nil, errors.NewValidationError("receipt number is required")
	}
	if err := s.repo.InsertSale(ctx, sale); err != nil {
		if !errors.IsConflictError(err) {
			s.logger.Errorw("failed to record sale", "receipt", sale.ReceiptNumber, "error", err)
		}
		return nil, err
	}
	s.logger.Infow("sale recorded", "receipt", sale.ReceiptNumber, "total", sale.Total)
	return s.repo.GetSale(ctx, sale.ReceiptNumber)
}

// UpdateSale replaces the sale filed under receiptNumber. The body may omit
// the receipt number but must not name a different one.
func (s *Service) UpdateSale(ctx context.Context, receiptNumber string, sale domainInventory.Sale) (*domainInventory.Sale, error) {
	if sale.ReceiptNumber == "" {
		sale.ReceiptNumber = receiptNumber
	}
	if sale.ReceiptNumber != receiptNumber {
		return nil, errors.NewValidationError("receipt number cannot be changed", sale.ReceiptNumber)
	}
	updated, err := s.repo.UpdateSale(ctx, sale)
	if err != nil {
		if !errors.IsNotFoundError(err) {
			s.logger.Errorw("failed to update sale", "receipt", receiptNumber, "error", err)
		}
		return nil, err
	}
	s.logger.Infow("sale updated", "receipt", receiptNumber)
	return updated, nil
}

func (s *Service) DeleteSale(ctx context.Context, receiptNumber string) error {
	if err := s.repo.DeleteSale(ctx, receiptNumber); err != nil {
		if !errors.IsNotFoundError(err) {
			s.logger.Errorw("failed to delete sale", "receipt", receiptNumber, "error", err)
		}
		return err
	}
	s.logger.Infow("sale deleted", "receipt", receiptNumber)
	return nil
}

func checkTable(table string) error {
	if !domainInventory.IsCatalogueTable(table) {
		return errors.NewNotFoundError(fmt.Sprintf("unknown catalogue table %q", table))
	}
	return nil
}

// checkPayload accepts a JSON object only.
func checkPayload(payload json.RawMessage) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return errors.NewValidationError("record payload must be a JSON object")
	}
	return nil
}
