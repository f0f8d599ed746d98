package models

import "time"

// FileInfo represents metadata about an ingested spreadsheet.
type FileInfo struct {
	ID         string    `json:"fileId"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}
