// Package export renders schedules as an XLSX roster.
package export

import (
	"fmt"
	"io"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/schedule"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Roster"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type column struct {
	header string
	width  float64
	value  func(*schedule.Lookup, entity.Schedule) string
}

var columns = []column{
	{"Date", 12, func(_ *schedule.Lookup, s entity.Schedule) string { return dateOnly(s.Date) }},
	{"Employee", 28, (*schedule.Lookup).UserName},
	{"Department", 24, (*schedule.Lookup).DepartmentName},
	{"Sub-department", 24, (*schedule.Lookup).SubDepartmentName},
	{"Shift", 20, (*schedule.Lookup).ShiftName},
	{"Time", 20, (*schedule.Lookup).TimeRange},
}

func dateOnly(date string) string {
	if len(date) > len(schedule.DateLayout) {
		return date[:len(schedule.DateLayout)]
	}
	return date
}

// Roster builds the workbook: a bold header row and one row per schedule.
func Roster(l *schedule.Lookup, schedules []entity.Schedule) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.header
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, name, name, c.width); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		_ = f.Close()
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, s := range schedules {
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			row[j] = c.value(l, s)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	if len(schedules) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(columns), len(schedules)+1)
		if err := f.AutoFilter(SheetName, "A1:"+end, nil); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return f, nil
}

// WriteRoster streams the roster to w.
func WriteRoster(w io.Writer, l *schedule.Lookup, schedules []entity.Schedule) error {
	f, err := Roster(l, schedules)
	if err != nil {
		return fmt.Errorf("build roster: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	return nil
}

// FileName is the attachment name for a roster covering start..end.
func FileName(start, end string) string {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf("schedules_%s_%s.xlsx", start, end)
	case start != "":
		return fmt.Sprintf("schedules_from_%s.xlsx", start)
	default:
		return "schedules.xlsx"
	}
}
