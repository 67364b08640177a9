package types

import "fmt"

type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
)

func (f ExportFormat) IsValid() bool {
	return f == ExportFormatJSON || f == ExportFormatCSV
}

func ParseExportFormat(s string) (ExportFormat, error) {
	v := ExportFormat(s)
	if !v.IsValid() {
		return "", fmt.Errorf("недопустимый формат выгрузки: %q", s)
	}
	return v, nil
}

func (f ExportFormat) ContentType() string {
	if f == ExportFormatCSV {
		return "text/csv"
	}
	return "application/json"
}
