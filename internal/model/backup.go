package model

import "time"

type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusUploading BackupStatus = "uploading"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// Backup records one encrypted export upload.
type Backup struct {
	ID           int64        `json:"id"`
	UserUID      string       `json:"userUid"`
	Filename     string       `json:"filename"`
	S3Key        string       `json:"s3Key"`
	SizeBytes    int64        `json:"sizeBytes"`
	Status       BackupStatus `json:"status"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Export is the flat JSON backup document: the requesting user's own
// items plus their preferences.
type Export struct {
	ExportedAt  time.Time   `json:"exportedAt"`
	FamilyCode  string      `json:"familyCode"`
	Items       []Item      `json:"items"`
	Preferences Preferences `json:"preferences"`
}
