package worm

import (
	"errors"
	"testing"
)

type idRow struct {
	ID int
}

func TestResults_PerRowErrors(t *testing.T) {
	rowFailure := errors.New("decode failed")
	rows := NewSliceRows(
		Ok(Int(1)),
		Fail(rowFailure),
		Ok(String("not a number")),
		Ok(Int(4)),
	)
	results := NewResults(rows, MustDerive[idRow]())

	type outcome struct {
		id  int
		err error
	}
	var got []outcome
	for row, err := range results.All() {
		got = append(got, outcome{row.ID, err})
	}
	if len(got) != 4 {
		t.Fatalf("Expected one element per row, got %d", len(got))
	}
	if got[0].err != nil || got[0].id != 1 {
		t.Errorf("row 0: unexpected %+v", got[0])
	}
	if !errors.Is(got[1].err, ErrRawRow) || !errors.Is(got[1].err, rowFailure) {
		t.Errorf("row 1: Expected a raw row error wrapping the failure, got %v", got[1].err)
	}
	var rowErr *RowConversionError
	if !errors.As(got[2].err, &rowErr) || rowErr.Field != "ID" || !errors.Is(got[2].err, ErrIncorrectType) {
		t.Errorf("row 2: Expected a field error on ID, got %v", got[2].err)
	}
	if got[3].err != nil || got[3].id != 4 {
		t.Errorf("row 3: unexpected %+v", got[3])
	}
	if !rows.Closed() {
		t.Error("Expected the rows to be closed once exhausted")
	}
}

func TestResults_NextAndResult(t *testing.T) {
	results := NewResults(NewSliceRows(Ok(Int(7))), MustDerive[idRow]())
	if !results.Next() {
		t.Fatal("Expected a row")
	}
	row, err := results.Result()
	if err != nil || row.ID != 7 {
		t.Errorf("unexpected %+v, %v", row, err)
	}
	if results.Next() {
		t.Error("Expected the results to be exhausted")
	}
	if _, err = results.Result(); !errors.Is(err, ErrResultsClosed) {
		t.Errorf("Expected ErrResultsClosed, got %v", err)
	}
}

func TestResults_BreakClosesRows(t *testing.T) {
	rows := NewSliceRows(Ok(Int(1)), Ok(Int(2)), Ok(Int(3)))
	results := NewResults(rows, MustDerive[idRow]())
	for range results.All() {
		break
	}
	if !rows.Closed() {
		t.Error("Expected the rows to be closed after break")
	}
	if results.Next() {
		t.Error("Expected no rows after close")
	}
	var n int
	for _, err := range results.All() {
		n++
		if !errors.Is(err, ErrResultsClosed) {
			t.Errorf("Expected ErrResultsClosed, got %v", err)
		}
	}
	if n != 1 {
		t.Errorf("Expected a single ErrResultsClosed, got %d elements", n)
	}
}

func TestResults_Empty(t *testing.T) {
	results := NewResults(NewSliceRows(), MustDerive[idRow]())
	items, err := results.Collect()
	if err != nil || len(items) != 0 {
		t.Errorf("Expected no rows, got %v, %v", items, err)
	}
}

func TestResults_CollectStopsAtFirstError(t *testing.T) {
	results := NewResults(NewSliceRows(Ok(Int(1)), Ok(Null()), Ok(Int(3))), MustDerive[idRow]())
	items, err := results.Collect()
	if !errors.Is(err, ErrIncorrectType) {
		t.Errorf("Expected ErrIncorrectType, got %v", err)
	}
	if len(items) != 1 || items[0].ID != 1 {
		t.Errorf("Expected the rows before the failure, got %+v", items)
	}
}

func TestResults_PlainMapperErrorIsWrapped(t *testing.T) {
	failure := errors.New("boom")
	mapper := RowMapper[idRow](func(*Row) (idRow, error) { return idRow{ID: 9}, failure })
	results := NewResults(NewSliceRows(Ok()), mapper)
	if !results.Next() {
		t.Fatal("Expected a row")
	}
	row, err := results.Result()
	var rowErr *RowConversionError
	if !errors.As(err, &rowErr) || !errors.Is(err, failure) {
		t.Errorf("Expected a RowConversionError wrapping the failure, got %v", err)
	}
	if row.ID != 0 {
		t.Errorf("Expected the zero value on failure, got %+v", row)
	}
}
