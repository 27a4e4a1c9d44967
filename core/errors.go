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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEvent indicates a FileRegistrationEvent failed validation.
	ErrInvalidEvent = errors.New("invalid file registration event")

	// ErrInvalidResult indicates an AnalysisResult failed validation.
	ErrInvalidResult = errors.New("invalid analysis result")

	// ErrEmptyFileID indicates the FileID field is empty.
	ErrEmptyFileID = errors.New("file id cannot be empty")

	// ErrEmptyUserID indicates the UserID field is empty.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrEmptyMimeType indicates the MimeType field is empty.
	ErrEmptyMimeType = errors.New("mime type cannot be empty")

	// ErrNegativeFileSize indicates a negative FileSize value.
	ErrNegativeFileSize = errors.New("file size cannot be negative")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidPriority indicates an unknown priority value.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrEmptyStatus indicates the result Status field is empty.
	ErrEmptyStatus = errors.New("analysis status cannot be empty")
)
