package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateFileRegistrationEvent(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		event   *FileRegistrationEvent
		wantErr error
	}{
		{
			name: "valid event",
			event: &FileRegistrationEvent{
				FileID:     "file-1",
				UserID:     "user-1",
				Filename:   "notes.txt",
				MimeType:   "text/plain",
				FileSize:   1024,
				UploadedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid event with zero uploaded time",
			event: &FileRegistrationEvent{
				FileID:   "file-1",
				UserID:   "user-1",
				MimeType: "text/plain",
			},
			wantErr: nil,
		},
		{
			name: "valid event with priority",
			event: &FileRegistrationEvent{
				FileID:   "file-1",
				UserID:   "user-1",
				MimeType: "text/plain",
				Priority: PriorityHigh,
			},
			wantErr: nil,
		},
		{
			name: "valid event with zero size",
			event: &FileRegistrationEvent{
				FileID:   "file-1",
				UserID:   "user-1",
				MimeType: "text/plain",
				FileSize: 0,
			},
			wantErr: nil,
		},
		{
			name:    "nil event",
			event:   nil,
			wantErr: ErrInvalidEvent,
		},
		{
			name: "empty file id",
			event: &FileRegistrationEvent{
				UserID:   "user-1",
				MimeType: "text/plain",
			},
			wantErr: ErrEmptyFileID,
		},
		{
			name: "empty user id",
			event: &FileRegistrationEvent{
				FileID:   "file-1",
				MimeType: "text/plain",
			},
			wantErr: ErrEmptyUserID,
		},
		{
			name: "empty mime type",
			event: &FileRegistrationEvent{
				FileID: "file-1",
				UserID: "user-1",
			},
			wantErr: ErrEmptyMimeType,
		},
		{
			name: "negative file size",
			event: &FileRegistrationEvent{
				FileID:   "file-1",
				UserID:   "user-1",
				MimeType: "text/plain",
				FileSize: -1,
			},
			wantErr: ErrNegativeFileSize,
		},
		{
			name: "future uploaded time",
			event: &FileRegistrationEvent{
				FileID:     "file-1",
				UserID:     "user-1",
				MimeType:   "text/plain",
				UploadedAt: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
		{
			name: "unknown priority",
			event: &FileRegistrationEvent{
				FileID:   "file-1",
				UserID:   "user-1",
				MimeType: "text/plain",
				Priority: "urgent",
			},
			wantErr: ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileRegistrationEvent(tt.event)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFileRegistrationEvent() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateFileRegistrationEvent() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFileRegistrationEvent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAnalysisResult(t *testing.T) {
	tests := []struct {
		name    string
		result  *AnalysisResult
		wantErr error
	}{
		{
			name: "valid completed result",
			result: &AnalysisResult{
				Summary: "summary",
				Status:  AnalysisStatusCompleted,
			},
			wantErr: nil,
		},
		{
			name: "valid failed result",
			result: &AnalysisResult{
				Status: AnalysisStatusFailed,
				Error:  "all providers failed",
			},
			wantErr: nil,
		},
		{
			name:    "nil result",
			result:  nil,
			wantErr: ErrInvalidResult,
		},
		{
			name:    "empty status",
			result:  &AnalysisResult{Summary: "summary"},
			wantErr: ErrEmptyStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnalysisResult(tt.result)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateAnalysisResult() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateAnalysisResult() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAnalysisResult() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePriority(t *testing.T) {
	tests := []struct {
		name     string
		priority string
		wantErr  bool
	}{
		{
			name:     "empty priority",
			priority: "",
			wantErr:  false,
		},
		{
			name:     "low",
			priority: PriorityLow,
			wantErr:  false,
		},
		{
			name:     "normal",
			priority: PriorityNormal,
			wantErr:  false,
		},
		{
			name:     "high",
			priority: PriorityHigh,
			wantErr:  false,
		},
		{
			name:     "unknown value",
			priority: "urgent",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePriority(tt.priority)

			if tt.wantErr && err == nil {
				t.Error("ValidatePriority() error = nil, want error")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePriority() error = %v, want nil", err)
			}

			if err != nil && !errors.Is(err, ErrInvalidPriority) {
				t.Errorf("ValidatePriority() error = %v, want %v", err, ErrInvalidPriority)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{
			name: "past timestamp",
			ts:   time.Now().Add(-1 * time.Hour),
			want: true,
		},
		{
			name: "future timestamp",
			ts:   time.Now().Add(1 * time.Hour),
			want: false,
		},
		{
			name: "zero time",
			ts:   time.Time{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidTimestamp(tt.ts)
			if got != tt.want {
				t.Errorf("IsValidTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}
