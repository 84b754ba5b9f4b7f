package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbook_WritesSheets(t *testing.T) {
	data, err := Workbook(
		Sheet{
			Name:    "Attendance",
			Headers: []string{"Date", "Work minutes"},
			Rows:    [][]interface{}{{"2025-03-10", 540}, {"2025-03-11", 480}},
		},
		Sheet{
			Name:    "Summary",
			Headers: []string{"Work days"},
			Rows:    [][]interface{}{{2}},
		},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Attendance", "Summary"}, f.GetSheetList())

	v, err := f.GetCellValue("Attendance", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", v)

	v, err = f.GetCellValue("Attendance", "B3")
	require.NoError(t, err)
	assert.Equal(t, "480", v)
}

func TestWorkbook_RequiresSheet(t *testing.T) {
	_, err := Workbook()
	assert.Error(t, err)
}

func TestCalendar(t *testing.T) {
	stamp := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	out := string(Calendar("tanaka 2025-03", stamp, []Event{
		{
			UID:     "holiday-1",
			Summary: "PAID holiday",
			Start:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		},
	}))

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "UID:holiday-1")
	assert.Contains(t, out, "SUMMARY:PAID holiday")
	assert.Contains(t, out, "20250310")
	assert.Contains(t, out, "20250312")
}
