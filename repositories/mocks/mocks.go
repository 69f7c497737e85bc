// Package mocks provides testify mocks of the repository interfaces
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vukatravels/site/models"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockSubmissionLog mocks repositories.SubmissionLog
type MockSubmissionLog struct {
	mock.Mock
}

func NewMockSubmissionLog(t testingT) *MockSubmissionLog {
	m := &MockSubmissionLog{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSubmissionLog) Append(ctx context.Context, header, record []string) error {
	args := m.Called(ctx, header, record)
	return args.Error(0)
}

func (m *MockSubmissionLog) ReadAll(ctx context.Context) ([][]string, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([][]string)
	return rows, args.Error(1)
}

func (m *MockSubmissionLog) Path() string {
	args := m.Called()
	return args.String(0)
}

// MockExportRepository mocks repositories.ExportRepository
type MockExportRepository struct {
	mock.Mock
}

func NewMockExportRepository(t testingT) *MockExportRepository {
	m := &MockExportRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockExportRepository) Write(rows [][]string) error {
	args := m.Called(rows)
	return args.Error(0)
}

func (m *MockExportRepository) Path() string {
	args := m.Called()
	return args.String(0)
}

// MockAuditRepository mocks repositories.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func NewMockAuditRepository(t testingT) *MockAuditRepository {
	m := &MockAuditRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]models.AuditLogEntry)
	return entries, args.Error(1)
}

// MockRevalidationRepository mocks repositories.RevalidationRepository
type MockRevalidationRepository struct {
	mock.Mock
}

func NewMockRevalidationRepository(t testingT) *MockRevalidationRepository {
	m := &MockRevalidationRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRevalidationRepository) Record(ctx context.Context, record *models.RevalidationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRevalidationRepository) Recent(ctx context.Context, limit int) ([]models.RevalidationRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]models.RevalidationRecord)
	return records, args.Error(1)
}
