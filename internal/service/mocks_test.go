package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"go-finance-tracker/internal/model"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, username string, passwordHash string) (int64, error) {
	args := m.Called(ctx, username, passwordHash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStore) IncrementFailedAttempts(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockUserStore) LockAccount(ctx context.Context, userID int64, until time.Time) error {
	args := m.Called(ctx, userID, until)
	return args.Error(0)
}

func (m *MockUserStore) ClearLockout(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserStore) RecordLoginSuccess(ctx context.Context, userID int64, ip string) error {
	args := m.Called(ctx, userID, ip)
	return args.Error(0)
}

type MockBlacklistStore struct {
	mock.Mock
}

func (m *MockBlacklistStore) Upsert(ctx context.Context, row model.RevokedToken) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockBlacklistStore) Exists(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklistStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockLoginLogStore struct {
	mock.Mock
}

func (m *MockLoginLogStore) Append(ctx context.Context, entry model.LoginLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Create(ctx context.Context, rec model.Record) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordStore) List(ctx context.Context, f model.RecordFilter, limit int, offset int) ([]model.Record, int, error) {
	args := m.Called(ctx, f, limit, offset)
	return args.Get(0).([]model.Record), args.Int(1), args.Error(2)
}

func (m *MockRecordStore) Delete(ctx context.Context, id int64, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockRecordStore) Categories(ctx context.Context, userID int64, recordType string) ([]string, error) {
	args := m.Called(ctx, userID, recordType)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecordStore) Summarize(ctx context.Context, f model.RecordFilter) (model.Summary, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(model.Summary), args.Error(1)
}
