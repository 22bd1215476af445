package timeseries

import (
	"testing"
	"time"

	"github.com/sartorproj/covidframe/frame"
)

func TestApplyGroupsKeepsRowPositions(t *testing.T) {
	d := func(day int) time.Time { return frame.D(2020, 2, day) }
	tbl, err := frame.NewLong(
		[]time.Time{d(3), d(1), d(1), d(2)},
		[]frame.KeyColumn{{Name: "state", Values: []frame.Value{
			frame.String("Ohio"), frame.String("Ohio"), frame.String("Iowa"), frame.String("Ohio"),
		}}},
		[]frame.MetricColumn{{Name: "cases", Values: []float64{6, 1, 7, 3}}})
	if err != nil {
		t.Fatal(err)
	}

	groups, err := GroupsByDate(tbl, "test", []string{"cases"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ApplyGroups(tbl, groups, "cases", func(s *Series) *Series { return s.OffsetDiff() })
	if err != nil {
		t.Fatal(err)
	}

	expected := []float64{3, 1, 7, 2}
	for i, v := range got {
		if v != expected[i] {
			t.Errorf("Expected %f at row %d, got %f", expected[i], i, v)
		}
	}
}

func TestApplyRows(t *testing.T) {
	wide, err := frame.NewWide("cases",
		[]frame.KeyColumn{{Name: "state", Values: []frame.Value{frame.String("Ohio"), frame.String("Iowa")}}},
		[]time.Time{frame.D(2020, 2, 1), frame.D(2020, 2, 2)},
		[][]float64{{1, 2}, {4, 8}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := ApplyRows(wide, func(s *Series) *Series { return s.OffsetDiff() })
	if err != nil {
		t.Fatal(err)
	}
	if got[1][0] != 3 || got[1][1] != 6 {
		t.Errorf("Expected second column [3 6], got %v", got[1])
	}

	out, err := RebuildWide(wide, "daily_cases", got)
	if err != nil {
		t.Fatal(err)
	}
	if out.MetricName() != "daily_cases" || out.NumRows() != 2 {
		t.Errorf("Unexpected rebuilt table %s", out)
	}
}

func TestApplyRejectsLengthChange(t *testing.T) {
	tbl, err := frame.NewLong(
		[]time.Time{frame.D(2020, 2, 1), frame.D(2020, 2, 2)},
		[]frame.KeyColumn{{Name: "state", Values: []frame.Value{frame.String("Ohio"), frame.String("Ohio")}}},
		[]frame.MetricColumn{{Name: "cases", Values: []float64{1, 2}}})
	if err != nil {
		t.Fatal(err)
	}
	short := func(s *Series) *Series { return New(s.Values[:s.Len()-1]) }

	groups, err := GroupsByDate(tbl, "test", []string{"cases"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ApplyGroups(tbl, groups, "cases", short); err == nil {
		t.Error("Expected an error for a transform that drops values")
	}

	wide, err := frame.NewWide("cases", nil,
		[]time.Time{frame.D(2020, 2, 1), frame.D(2020, 2, 2)},
		[][]float64{{1}, {2}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ApplyRows(wide, short); err == nil {
		t.Error("Expected an error for a transform that drops values")
	}
}
