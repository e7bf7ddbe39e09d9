package models

import "time"

// ExportResource names the collection being exported.
type ExportResource string

const (
	ExportUsers    ExportResource = "users"
	ExportCourses  ExportResource = "courses"
	ExportEvents   ExportResource = "events"
	ExportInvoices ExportResource = "invoices"
	ExportLeaves   ExportResource = "leaves"
)

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportQueued     ExportStatus = "QUEUED"
	ExportProcessing ExportStatus = "PROCESSING"
	ExportFinished   ExportStatus = "FINISHED"
	ExportFailed     ExportStatus = "FAILED"
)

// ExportJob is the metadata of an asynchronous export.
type ExportJob struct {
	ID           string         `json:"id"`
	Resource     ExportResource `json:"resource"`
	Format       ExportFormat   `json:"format"`
	Status       ExportStatus   `json:"status"`
	Progress     int            `json:"progress"`
	ResultURL    *string        `json:"result_url,omitempty"`
	CreatedBy    string         `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
	ErrorMessage *string        `json:"error,omitempty"`
}

// ExportRequest creates an export job.
type ExportRequest struct {
	Resource ExportResource `json:"resource" validate:"required,oneof=users courses events invoices leaves"`
	Format   ExportFormat   `json:"format" validate:"required,oneof=csv pdf"`
}
