package extract

import (
	"errors"
	"strings"
	"testing"

	"meeting-brief-service/internal/domain"
)

func TestLooksLikeHeader(t *testing.T) {
	cases := []struct {
		row  []string
		want bool
	}{
		{[]string{"Name", "Amount", "Date"}, true},
		{[]string{"12", "3.5", "-7"}, false},
		{[]string{"2024-01-31", "31/01/2024", "1-31-24"}, false},
		{[]string{"", "  ", ""}, false},
		{[]string{"100", "", "Revenue"}, true},
		{nil, false},
	}
	for _, c := range cases {
		if got := looksLikeHeader(c.row); got != c.want {
			t.Errorf("looksLikeHeader(%v) = %v, want %v", c.row, got, c.want)
		}
	}
}

func TestRowsTranscriptWithHeader(t *testing.T) {
	rows := [][]string{
		{"Task", "Owner", "Done"},
		{"Ship beta", "Ana", "false"},
		{"Count bugs", "Li", "0"},
	}
	got := rowsTranscript(rows)
	want := "Columns: Task, Owner, Done\n" +
		"\nRow 1:\nTask: Ship beta\nOwner: Ana\nDone: false\n" +
		"\nRow 2:\nTask: Count bugs\nOwner: Li\nDone: 0"
	if got != want {
		t.Errorf("rowsTranscript = %q, want %q", got, want)
	}
}

func TestRowsTranscriptPreservesFalsyValues(t *testing.T) {
	rows := [][]string{
		{"Metric", "Value"},
		{"errors", "0"},
		{"enabled", "false"},
		{"note", ""},
	}
	got := rowsTranscript(rows)
	for _, want := range []string{"Value: 0", "Value: false", "Value: "} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
}

func TestRowsTranscriptSyntheticHeaders(t *testing.T) {
	rows := [][]string{
		{"1", "2", "3"},
		{"4", "5", "6"},
	}
	got := rowsTranscript(rows)
	if !strings.HasPrefix(got, "Columns: column_1, column_2, column_3") {
		t.Errorf("expected synthetic headers, got:\n%s", got)
	}
	// Both rows are data when the first row is not a header.
	if !strings.Contains(got, "Row 2:") {
		t.Errorf("first row must be treated as data:\n%s", got)
	}
}

func TestRowsTranscriptRaggedRows(t *testing.T) {
	rows := [][]string{
		{"A", "B", "C"},
		{"only"},
	}
	got := rowsTranscript(rows)
	for _, want := range []string{"A: only", "B: ", "C: "} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
}

func TestExtractCSV(t *testing.T) {
	e := testExtractor()
	got, err := e.extractCSV([]byte("Task,Owner\nShip beta,Ana\n"))
	if err != nil {
		t.Fatalf("extractCSV: %v", err)
	}
	if !strings.Contains(got, "Columns: Task, Owner") || !strings.Contains(got, "Task: Ship beta") {
		t.Errorf("unexpected transcript:\n%s", got)
	}
}

func TestExtractCSVEmpty(t *testing.T) {
	e := testExtractor()
	got, err := e.extractCSV(nil)
	if err != nil {
		t.Fatalf("extractCSV: %v", err)
	}
	if got != "" {
		t.Errorf("empty csv produced %q", got)
	}
}

func TestExtractXLSXGarbage(t *testing.T) {
	e := testExtractor()
	if _, err := e.extractXLSX([]byte("not a workbook")); !errors.Is(err, domain.ErrParseFailure) {
		t.Errorf("err = %v, want ErrParseFailure", err)
	}
}
