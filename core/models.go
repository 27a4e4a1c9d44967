package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// HashContent generates a deterministic fingerprint for file content combined
// with its MIME type using BLAKE2b hashing. Identical content analyzed under a
// different MIME type produces a different fingerprint.
func HashContent(content []byte, mimeType string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(mimeType))
	return hex.EncodeToString(h.Sum(nil))
}

// FileStatus tracks a file's position in its processing lifecycle as recorded
// by the metadata store.
type FileStatus string

const (
	// FileStatusRegistered means the file is uploaded but not yet processed.
	FileStatusRegistered FileStatus = "registered"
	// FileStatusAnalyzing means processing has started for the file.
	FileStatusAnalyzing FileStatus = "analyzing"
	// FileStatusAnalyzed means analysis completed and results are stored.
	FileStatusAnalyzed FileStatus = "analyzed"
	// FileStatusFailed means processing failed after exhausting providers.
	FileStatusFailed FileStatus = "failed"
)

// Processing priorities carried on registration events. An empty priority is
// treated as PriorityNormal.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// FileRegistrationEvent is the inbound notification that a file finished
// uploading and is ready for processing. It mirrors the wire payload emitted
// by the upload service.
type FileRegistrationEvent struct {
	FileID      string    `json:"fileId"`
	UserID      string    `json:"userId"`
	Filename    string    `json:"filename"`
	StorageKey  string    `json:"storageKey"`
	MimeType    string    `json:"mimeType"`
	FileSize    int64     `json:"fileSize"`
	UploadedAt  time.Time `json:"uploadedAt"`
	DownloadURL string    `json:"downloadUrl,omitempty"` // Pre-signed URL, if the upload service resolved one
	Priority    string    `json:"priority,omitempty"`
	RetryCount  int       `json:"retryCount,omitempty"` // Delivery attempt counter stamped by the transport on redelivery
}

// EffectivePriority returns the event priority, defaulting to PriorityNormal
// when unset.
func (e *FileRegistrationEvent) EffectivePriority() string {
	if e.Priority == "" {
		return PriorityNormal
	}
	return e.Priority
}

// ProcessingContext carries per-invocation processing state through the
// pipeline and into completion callbacks.
type ProcessingContext struct {
	FileID     string    `json:"fileId"`
	UserID     string    `json:"userId"`
	JobID      string    `json:"jobId"` // Unique per processing attempt, idempotency key for callbacks
	StartTime  time.Time `json:"startTime"`
	RetryCount int       `json:"retryCount"`
}

// NewProcessingContext builds the context for one processing attempt of the
// given event. Each attempt receives a fresh JobID.
func NewProcessingContext(event *FileRegistrationEvent) ProcessingContext {
	return ProcessingContext{
		FileID:     event.FileID,
		UserID:     event.UserID,
		JobID:      uuid.NewString(),
		StartTime:  time.Now(),
		RetryCount: event.RetryCount,
	}
}

// AnalysisStatus reports the outcome of a content analysis attempt.
type AnalysisStatus string

const (
	// AnalysisStatusPending means analysis has not completed yet.
	AnalysisStatusPending AnalysisStatus = "pending"
	// AnalysisStatusCompleted means a provider produced a usable result.
	AnalysisStatusCompleted AnalysisStatus = "completed"
	// AnalysisStatusFailed means every capable provider failed.
	AnalysisStatusFailed AnalysisStatus = "failed"
)

// AnalysisResult is the structured outcome of analyzing one file's content.
type AnalysisResult struct {
	Summary    string         `json:"summary"`
	Entities   []string       `json:"entities"`
	Topics     []string       `json:"topics"`
	Enrichment map[string]any `json:"enrichment,omitempty"` // Provider- and pipeline-supplied extras (word count, language, ...)
	Status     AnalysisStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	Provider   string         `json:"provider,omitempty"` // Name of the provider that produced the result
	Duration   time.Duration  `json:"duration,omitempty"` // Wall-clock analysis time, populated by the pipeline
}

// FileMetadata is the metadata store's record for a file. Summary, Entities
// and Topics are present once the file has been analyzed.
type FileMetadata struct {
	FileID       string     `json:"fileId"`
	UserID       string     `json:"userId"`
	Filename     string     `json:"filename"`
	MimeType     string     `json:"mimeType"`
	FileSize     int64      `json:"fileSize"`
	Status       FileStatus `json:"status"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	LastAnalyzed time.Time  `json:"lastAnalyzed"`
	Summary      string     `json:"summary,omitempty"`
	Entities     []string   `json:"entities,omitempty"`
	Topics       []string   `json:"topics,omitempty"`
	Fallback     bool       `json:"-"` // True when the record is a locally built placeholder during a store outage
}

// SearchDocument is the denormalized document pushed to search backends.
// Re-analysis of the same file produces a replacement document under the
// same ID.
type SearchDocument struct {
	ID           string    `json:"id"` // Equals the file ID
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Entities     []string  `json:"entities"`
	Topics       []string  `json:"topics"`
	UserID       string    `json:"userId"`
	Filename     string    `json:"filename"`
	MimeType     string    `json:"mimeType"`
	UploadedAt   time.Time `json:"uploadedAt"`
	LastAnalyzed time.Time `json:"lastAnalyzed"`
}

// NewSearchDocument derives the search document for a file from its stored
// metadata and a completed analysis result.
func NewSearchDocument(meta *FileMetadata, result *AnalysisResult, analyzedAt time.Time) *SearchDocument {
	return &SearchDocument{
		ID:           meta.FileID,
		Title:        meta.Filename,
		Summary:      result.Summary,
		Entities:     result.Entities,
		Topics:       result.Topics,
		UserID:       meta.UserID,
		Filename:     meta.Filename,
		MimeType:     meta.MimeType,
		UploadedAt:   meta.UploadedAt,
		LastAnalyzed: analyzedAt,
	}
}
