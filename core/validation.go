// Copyright 2026 Tamyla
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"time"
)

// ValidateFileRegistrationEvent validates an inbound event according to
// domain rules.
//
// Validation rules:
//   - FileID, UserID and MimeType must not be empty
//   - FileSize must not be negative
//   - UploadedAt must not be in the future (zero is allowed, some upload
//     services omit it)
//   - Priority, when set, must be low, normal or high
//
// NOT validated (optional delivery metadata):
//   - StorageKey and DownloadURL (at least one is needed to acquire content,
//     but which one depends on the configured fetcher)
//   - RetryCount (stamped by the transport)
func ValidateFileRegistrationEvent(event *FileRegistrationEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event is nil", ErrInvalidEvent)
	}

	if event.FileID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrEmptyFileID)
	}

	if event.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrEmptyUserID)
	}

	if event.MimeType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrEmptyMimeType)
	}

	if event.FileSize < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrNegativeFileSize)
	}

	if !IsValidTimestamp(event.UploadedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrInvalidTimestamp)
	}

	if err := ValidatePriority(event.Priority); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	return nil
}

// ValidateAnalysisResult validates a result before it is persisted or turned
// into a search document.
func ValidateAnalysisResult(result *AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidResult)
	}

	if result.Status == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResult, ErrEmptyStatus)
	}

	return nil
}

// ValidatePriority validates a priority value. The empty string is valid and
// means PriorityNormal.
func ValidatePriority(priority string) error {
	switch priority {
	case "", PriorityLow, PriorityNormal, PriorityHigh:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
