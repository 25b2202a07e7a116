package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/rmaia-dev/sgt-api/pkg/errors"
	"github.com/rmaia-dev/sgt-api/pkg/export"
)

// ExportFormat identifies the supported roster export encodings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders attendance sheets for a class session.
type ExportService struct {
	classes *ClassService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(classes *ClassService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		classes: classes,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// RosterSheet renders the attendance sheet for a class in the requested
// format.
func (s *ExportService) RosterSheet(ctx context.Context, classID string, format ExportFormat) (*ExportResult, error) {
	detail, err := s.classes.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	headers := []string{"Registration", "Name", "Unit", "Checked In", "Left Early"}
	rows := make([]map[string]string, 0, len(detail.Attendees))
	for _, attendee := range detail.Attendees {
		leftEarly := ""
		if attendee.LeftEarlyAt != nil {
			leftEarly = attendee.LeftEarlyAt.Format(time.RFC3339)
		}
		rows = append(rows, map[string]string{
			"Registration": attendee.Registration,
			"Name":         attendee.Name,
			"Unit":         attendee.Unit,
			"Checked In":   attendee.CheckedInAt.Format(time.RFC3339),
			"Left Early":   leftEarly,
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("attendance-%s.csv", detail.Code),
		}, nil
	case ExportFormatPDF:
		subtitle := fmt.Sprintf("%s - %s", detail.TypeLabel, detail.DateStart.Format("2006-01-02 15:04"))
		instructorLine := ""
		if detail.Instructor != nil {
			instructorLine = "Instructor: " + detail.Instructor.Name
		}
		content, err := s.pdf.Render(dataset, detail.Name, subtitle, instructorLine)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("attendance-%s.pdf", detail.Code),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
