package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carnival-tracker/internal/models"
	"carnival-tracker/internal/money"
	"carnival-tracker/internal/txn"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockDBLayer) TransactionIDExists(ctx context.Context, transactionID string) (bool, error) {
	args := m.Called(ctx, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockDBLayer) ListByDesk(ctx context.Context, desk string) ([]models.Transaction, error) {
	args := m.Called(ctx, desk)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockDBLayer) ListAll(ctx context.Context) ([]models.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockDBLayer) DeleteTransaction(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) RecordAppend(t models.Transaction) {
	m.Called(t)
}

func (m *MockMirror) RecordDelete(transactionID string) {
	m.Called(transactionID)
}

type MockStream struct {
	mock.Mock
}

func (m *MockStream) PublishTransactionRecorded(t models.Transaction) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *MockStream) PublishTransactionDeleted(t models.Transaction) error {
	args := m.Called(t)
	return args.Error(0)
}

func validRequest() txn.RecordRequest {
	return txn.RecordRequest{
		TransactionID: "TXN001",
		Amount:        "12.50",
		Tokens50:      2,
		Tokens100:     1,
		TokensHaunted: 0,
	}
}

func TestRecordSetsDeskFromSession(t *testing.T) {
	dbMock := new(MockDBLayer)
	mirror := new(MockMirror)

	dbMock.On("TransactionIDExists", mock.Anything, "TXN001").Return(false, nil)
	dbMock.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Desk == "desk1" && tx.TransactionID == "TXN001" && tx.Amount == money.Amount(1250)
	})).Return(nil)
	mirror.On("RecordAppend", mock.Anything).Return()

	svc := txn.NewService(dbMock, mirror, nil, nil)

	created, err := svc.Record(context.Background(), "desk1", validRequest())
	assert.NoError(t, err)
	assert.Equal(t, "desk1", created.Desk)

	dbMock.AssertExpectations(t)
	mirror.AssertExpectations(t)
}

func TestRecordTrimsTransactionID(t *testing.T) {
	dbMock := new(MockDBLayer)

	dbMock.On("TransactionIDExists", mock.Anything, "TXN001").Return(false, nil)
	dbMock.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.TransactionID == "TXN001"
	})).Return(nil)

	svc := txn.NewService(dbMock, nil, nil, nil)

	req := validRequest()
	req.TransactionID = "  TXN001  "
	_, err := svc.Record(context.Background(), "desk1", req)
	assert.NoError(t, err)
	dbMock.AssertExpectations(t)
}

func TestRecordDuplicatePreCheck(t *testing.T) {
	dbMock := new(MockDBLayer)
	mirror := new(MockMirror)

	dbMock.On("TransactionIDExists", mock.Anything, "TXN001").Return(true, nil)

	svc := txn.NewService(dbMock, mirror, nil, nil)

	_, err := svc.Record(context.Background(), "desk1", validRequest())
	assert.ErrorIs(t, err, txn.ErrDuplicateID)

	dbMock.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	mirror.AssertNotCalled(t, "RecordAppend", mock.Anything)
}

func TestRecordDuplicateRaceAtInsert(t *testing.T) {
	dbMock := new(MockDBLayer)
	mirror := new(MockMirror)

	// Pre-check passes but a concurrent insert wins the race.
	dbMock.On("TransactionIDExists", mock.Anything, "TXN001").Return(false, nil)
	dbMock.On("CreateTransaction", mock.Anything, mock.Anything).Return(txn.ErrDuplicateID)

	svc := txn.NewService(dbMock, mirror, nil, nil)

	_, err := svc.Record(context.Background(), "desk1", validRequest())
	assert.ErrorIs(t, err, txn.ErrDuplicateID)

	// No mirror write when the insert failed.
	mirror.AssertNotCalled(t, "RecordAppend", mock.Anything)
}

func TestRecordInvalidAmount(t *testing.T) {
	svc := txn.NewService(new(MockDBLayer), nil, nil, nil)

	req := validRequest()
	req.Amount = "12.505"
	_, err := svc.Record(context.Background(), "desk1", req)
	assert.ErrorIs(t, err, txn.ErrInvalidInput)

	req.Amount = "not-money"
	_, err = svc.Record(context.Background(), "desk1", req)
	assert.ErrorIs(t, err, txn.ErrInvalidInput)
}

func TestRecordRejectsNegativeTokens(t *testing.T) {
	svc := txn.NewService(new(MockDBLayer), nil, nil, nil)

	req := validRequest()
	req.Tokens50 = -1
	_, err := svc.Record(context.Background(), "desk1", req)
	assert.ErrorIs(t, err, txn.ErrInvalidInput)
}

func TestRecordStreamFailureDoesNotFail(t *testing.T) {
	dbMock := new(MockDBLayer)
	stream := new(MockStream)

	dbMock.On("TransactionIDExists", mock.Anything, "TXN001").Return(false, nil)
	dbMock.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil)
	stream.On("PublishTransactionRecorded", mock.Anything).Return(errors.New("broker down"))

	svc := txn.NewService(dbMock, nil, stream, nil)

	_, err := svc.Record(context.Background(), "desk1", validRequest())
	assert.NoError(t, err)
	stream.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	dbMock := new(MockDBLayer)
	mirror := new(MockMirror)

	stored := &models.Transaction{ID: 7, TransactionID: "TXN007", Desk: "desk2"}
	dbMock.On("GetTransactionByID", mock.Anything, int64(7)).Return(stored, nil)
	dbMock.On("DeleteTransaction", mock.Anything, int64(7)).Return(nil)
	mirror.On("RecordDelete", "TXN007").Return()

	svc := txn.NewService(dbMock, mirror, nil, nil)

	assert.NoError(t, svc.Delete(context.Background(), 7))
	dbMock.AssertExpectations(t)
	mirror.AssertExpectations(t)
}

func TestDeleteNotFound(t *testing.T) {
	dbMock := new(MockDBLayer)
	mirror := new(MockMirror)

	dbMock.On("GetTransactionByID", mock.Anything, int64(99)).Return(nil, txn.ErrNotFound)

	svc := txn.NewService(dbMock, mirror, nil, nil)

	err := svc.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, txn.ErrNotFound)
	mirror.AssertNotCalled(t, "RecordDelete", mock.Anything)
}
