package models

import "time"

type TestStatusKind string

const (
	StatusNotStarted TestStatusKind = "not_started"
	StatusCompleted  TestStatusKind = "completed"
)

// TestStatus is one row of a user's per-test overview.
type TestStatus struct {
	TestID      uint           `json:"test_id"`
	TestTitle   string         `json:"test_title"`
	Status      TestStatusKind `json:"status"`
	CompletedAt *time.Time     `json:"completed_at"`
	Result      map[string]any `json:"result"`
}

type TestResult struct {
	TestID      uint           `json:"test_id"`
	TestTitle   string         `json:"test_title"`
	Result      map[string]any `json:"result"`
	CompletedAt time.Time      `json:"completed_at"`
}

// StatusFor builds the overview row for test as seen by u.
func (u *User) StatusFor(test Test, title string) TestStatus {
	status := TestStatus{
		TestID:    test.ID,
		TestTitle: title,
		Status:    StatusNotStarted,
	}
	if entry, ok := u.Completion(test.ID); ok {
		completedAt := entry.CompletedAt
		status.Status = StatusCompleted
		status.CompletedAt = &completedAt
		status.Result = entry.Result
	}
	return status
}
