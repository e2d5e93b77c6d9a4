// Package export renders timetables as spreadsheets for printing and sharing.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of the generated workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName is the single sheet the workbook contains.
const SheetName = "Jadwal"

var timetableHeader = []interface{}{"Day", "Start", "End", "Class", "Subject", "Teacher", "Room", "Status"}

// WriteTimetable writes sessions as an xlsx workbook to w. classNames maps
// class ids to display names; unknown ids fall back to the numeric id.
func WriteTimetable(w io.Writer, sessions []model.TimetableSession, classNames map[int]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &timetableHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "H1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, s := range SortForExport(sessions) {
		class, ok := classNames[s.ClassID]
		if !ok {
			class = fmt.Sprintf("#%d", s.ClassID)
		}
		room := ""
		if s.Room != nil {
			room = *s.Room
		}
		teacher := s.TeacherName
		if teacher == "" {
			teacher = fmt.Sprintf("#%d", s.TeacherID)
		}

		row := []interface{}{
			string(s.DayOfWeek),
			s.StartTime.String(),
			s.EndTime.String(),
			class,
			s.Subject,
			teacher,
			room,
			string(s.Status),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 12)
	_ = f.SetColWidth(SheetName, "D", "F", 24)
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SortForExport orders sessions by day of week, start time, then class.
// The input slice is not modified.
func SortForExport(sessions []model.TimetableSession) []model.TimetableSession {
	out := make([]model.TimetableSession, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if da, db := dayIndex(a.DayOfWeek), dayIndex(b.DayOfWeek); da != db {
			return da < db
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ClassID < b.ClassID
	})
	return out
}

func dayIndex(d model.DayOfWeek) int {
	for i, day := range model.AllDays {
		if d == day {
			return i
		}
	}
	return len(model.AllDays)
}
