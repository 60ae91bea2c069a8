package txn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"carnival-tracker/internal/logger"
	"carnival-tracker/internal/models"
	"carnival-tracker/internal/money"
	"carnival-tracker/internal/txn/db"
)

// ErrInvalidInput wraps form validation failures.
var ErrInvalidInput = errors.New("invalid transaction input")

// Storage sentinels, re-exported so handlers need not import the db package.
var (
	ErrDuplicateID = db.ErrDuplicateID
	ErrNotFound    = db.ErrNotFound
)

type DBLayer interface {
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	TransactionIDExists(ctx context.Context, transactionID string) (bool, error)
	GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error)
	ListByDesk(ctx context.Context, desk string) ([]models.Transaction, error)
	ListAll(ctx context.Context) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// MirrorPublisher is the best-effort spreadsheet mirror. Calls never fail.
type MirrorPublisher interface {
	RecordAppend(txn models.Transaction)
	RecordDelete(transactionID string)
}

// StreamPublisher streams transaction events to Kafka when enabled.
type StreamPublisher interface {
	PublishTransactionRecorded(txn models.Transaction) error
	PublishTransactionDeleted(txn models.Transaction) error
}

// RecordRequest is the desk form payload. Token counts default to zero when
// the fields are absent or blank.
type RecordRequest struct {
	TransactionID string `validate:"required,max=50"`
	Amount        string `validate:"required"`
	Tokens50      int64  `validate:"gte=0"`
	Tokens100     int64  `validate:"gte=0"`
	TokensHaunted int64  `validate:"gte=0"`
}

type Service struct {
	DB     DBLayer
	Mirror MirrorPublisher
	Stream StreamPublisher
	Log    *logger.Logger

	validate *validator.Validate
}

func NewService(db DBLayer, mirror MirrorPublisher, stream StreamPublisher, log *logger.Logger) *Service {
	return &Service{
		DB:       db,
		Mirror:   mirror,
		Stream:   stream,
		Log:      log,
		validate: validator.New(),
	}
}

// Record persists one transaction for the given desk. The desk comes from the
// session, never from the form. The unique constraint on transaction_id is
// the correctness guarantee; the exists pre-check only produces the faster
// duplicate message. On success the mirror append and stream publish are
// best-effort and cannot fail the request.
func (s *Service) Record(ctx context.Context, desk string, req RecordRequest) (*models.Transaction, error) {
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	exists, err := s.DB.TransactionIDExists(ctx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check transaction id: %w", err)
	}
	if exists {
		return nil, ErrDuplicateID
	}

	txn := &models.Transaction{
		TransactionID: req.TransactionID,
		Amount:        amount,
		Desk:          desk,
		Tokens50:      req.Tokens50,
		Tokens100:     req.Tokens100,
		TokensHaunted: req.TokensHaunted,
	}
	if err := s.DB.CreateTransaction(ctx, txn); err != nil {
		// A concurrent submission can slip between the pre-check and the
		// insert; the constraint reports it as the same duplicate outcome.
		return nil, err
	}
	if s.Log != nil {
		s.Log.LogTxn("RECORD", txn.TransactionID, fmt.Sprintf("%s by %s", txn.Amount, desk))
	}

	if s.Mirror != nil {
		s.Mirror.RecordAppend(*txn)
	}
	if s.Stream != nil {
		if err := s.Stream.PublishTransactionRecorded(*txn); err != nil && s.Log != nil {
			s.Log.LogKafka("PUBLISH", "transaction_recorded", err.Error())
		}
	}
	return txn, nil
}

func (s *Service) ListForDesk(ctx context.Context, desk string) ([]models.Transaction, error) {
	return s.DB.ListByDesk(ctx, desk)
}

func (s *Service) ListAll(ctx context.Context) ([]models.Transaction, error) {
	return s.DB.ListAll(ctx)
}

// Delete removes a transaction by surrogate id. The database deletion is
// authoritative and commits first; the mirror row removal afterwards is
// best-effort and never affects the outcome.
func (s *Service) Delete(ctx context.Context, id int64) error {
	txn, err := s.DB.GetTransactionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	if s.Log != nil {
		s.Log.LogTxn("DELETE", txn.TransactionID, fmt.Sprintf("removed by admin (id=%d)", id))
	}

	if s.Mirror != nil {
		s.Mirror.RecordDelete(txn.TransactionID)
	}
	if s.Stream != nil {
		if err := s.Stream.PublishTransactionDeleted(*txn); err != nil && s.Log != nil {
			s.Log.LogKafka("PUBLISH", "transaction_deleted", err.Error())
		}
	}
	return nil
}
