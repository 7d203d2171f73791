package models

import (
	"time"
)

// Faculty is one of the university faculties a student can belong to.
type Faculty string

const (
	FacultyFIB   Faculty = "ФИБ"
	FacultyFKSIS Faculty = "ФКСИС"
	FacultyFKP   Faculty = "ФКП"
	FacultyFRE   Faculty = "ФРЭ"
	FacultyIEF   Faculty = "ИЭФ"
	FacultyFITU  Faculty = "ФИТУ"
)

var faculties = []Faculty{FacultyFIB, FacultyFKSIS, FacultyFKP, FacultyFRE, FacultyIEF, FacultyFITU}

// Faculties lists the accepted faculties in display order.
func Faculties() []Faculty {
	return append([]Faculty(nil), faculties...)
}

// ParseFaculty reports whether s names a known faculty.
func ParseFaculty(s string) (Faculty, bool) {
	for _, f := range faculties {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Course is the year of study, 1 through 6.
type Course int

const (
	FirstCourse Course = 1
	SixthCourse Course = 6
)

// ParseCourse reports whether n is a valid year of study.
func ParseCourse(n int) (Course, bool) {
	if n < int(FirstCourse) || n > int(SixthCourse) {
		return 0, false
	}
	return Course(n), true
}

// Identity is the tuple a student logs in with, minus the password.
type Identity struct {
	FirstName  string
	LastName   string
	MiddleName string
	Faculty    Faculty
	Course     Course
}

type User struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	FirstName      string      `gorm:"size:100;not null;uniqueIndex:idx_users_identity" json:"first_name"`
	LastName       string      `gorm:"size:100;not null;uniqueIndex:idx_users_identity" json:"last_name"`
	MiddleName     string      `gorm:"size:100;not null;uniqueIndex:idx_users_identity" json:"middle_name"`
	Faculty        Faculty     `gorm:"size:16;not null;uniqueIndex:idx_users_identity" json:"faculty"`
	Course         Course      `gorm:"not null;uniqueIndex:idx_users_identity" json:"course"`
	PasswordHash   string      `gorm:"size:255;not null" json:"-"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	CompletedTests Completions `gorm:"type:json;serializer:json" json:"completed_tests"`
}

// FullName is "last first middle", the order used on university documents.
func (u *User) FullName() string {
	return u.LastName + " " + u.FirstName + " " + u.MiddleName
}

func (u *User) Identity() Identity {
	return Identity{
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		MiddleName: u.MiddleName,
		Faculty:    u.Faculty,
		Course:     u.Course,
	}
}

// CompletionEntry is one test's recorded result.
type CompletionEntry struct {
	TestID      uint           `json:"test_id"`
	Result      map[string]any `json:"result"`
	CompletedAt time.Time      `json:"completed_at"`
}

// Completions holds at most one entry per test id, in insertion order.
type Completions []CompletionEntry

// RecordCompletion upserts the entry for testID: an existing entry is
// overwritten in place, otherwise a new one is appended.
func (u *User) RecordCompletion(testID uint, result map[string]any, completedAt time.Time) CompletionEntry {
	entry := CompletionEntry{
		TestID:      testID,
		Result:      result,
		CompletedAt: completedAt,
	}
	for i := range u.CompletedTests {
		if u.CompletedTests[i].TestID == testID {
			u.CompletedTests[i] = entry
			return entry
		}
	}
	u.CompletedTests = append(u.CompletedTests, entry)
	return entry
}

// Completion returns the recorded entry for testID, if any.
func (u *User) Completion(testID uint) (CompletionEntry, bool) {
	for _, entry := range u.CompletedTests {
		if entry.TestID == testID {
			return entry, true
		}
	}
	return CompletionEntry{}, false
}

func (u *User) HasCompleted(testID uint) bool {
	_, ok := u.Completion(testID)
	return ok
}
