// Package mocks provides mock implementations of the eventhub ports and repositories.
//
// This package uses go.uber.org/mock (gomock). Mocks are checked in so tests build without
// running the generator first. To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	repo := mocks.NewMockEventRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), int64(7)).Return(event, nil)
package mocks

// Generate mock for RecordClient interface from internal/ports package.
// This creates MockRecordClient with methods for all RecordClient interface methods:
// FetchRecords, GetRecordByID, CreateRecords, UpdateRecords, DeleteRecords
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=record_client_mock.go github.com/target/eventhub/internal/ports RecordClient

// Generate mock for EventRepository interface from internal/core package.
// This creates MockEventRepository with methods for all EventRepository interface methods:
// Create, GetByID, List, Update, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_repository_mock.go github.com/target/eventhub/internal/core EventRepository

// Generate mock for ProfileRepository interface from internal/core package.
// This creates MockProfileRepository with methods for all ProfileRepository interface methods:
// GetByUserID, Upsert
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_repository_mock.go github.com/target/eventhub/internal/core ProfileRepository
