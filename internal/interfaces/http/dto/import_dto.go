package dto

import tsvimport "github.com/qbic/datamanager/internal/infrastructure/import"

// SheetErrorResponse lists the row errors of a rejected measurement sheet
// @Description Row level errors of a measurement sheet that could not be read
type SheetErrorResponse struct {
	Errors      []tsvimport.RowError `json:"errors"`
	TotalErrors int                  `json:"total_errors" example:"3"`
	IsTruncated bool                 `json:"is_truncated,omitempty" example:"false"`
}

// NewSheetErrorResponse converts collected row errors
func NewSheetErrorResponse(errs *tsvimport.ErrorCollection) SheetErrorResponse {
	return SheetErrorResponse{
		Errors:      errs.Errors(),
		TotalErrors: errs.TotalCount(),
		IsTruncated: errs.IsTruncated(),
	}
}
