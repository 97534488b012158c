package worm

import (
	"errors"
	"math/big"
	"testing"
	"time"
)

type derivedAccount struct {
	ID      int64
	Name    string
	Balance float64
	Email   *string
	Active  Nullable[bool]
	Total   *big.Int
	Created time.Time
}

func TestDerive(t *testing.T) {
	mapper, err := Derive[derivedAccount]()
	if err != nil {
		t.Fatal(err)
	}
	total, _ := BigInt(new(big.Int).Lsh(big.NewInt(1), 100))
	account, err := mapper(NewRow(
		Int(1), String("alice"), Float64(2.5), Null(), Bool(true), total, String("2024-01-02T03:04:05Z"),
	))
	if err != nil {
		t.Fatal(err)
	}
	if account.ID != 1 || account.Name != "alice" || account.Balance != 2.5 {
		t.Errorf("unexpected account %+v", account)
	}
	if account.Email != nil {
		t.Errorf("Expected nil email, got %v", *account.Email)
	}
	if !account.Active.Valid || !account.Active.V {
		t.Errorf("Expected active, got %+v", account.Active)
	}
	if account.Total.Cmp(new(big.Int).Lsh(big.NewInt(1), 100)) != 0 {
		t.Errorf("unexpected total %s", account.Total)
	}
	if !account.Created.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("unexpected created %s", account.Created)
	}
}

func TestDerive_IgnoresTrailingValues(t *testing.T) {
	type pair struct {
		A int
		B string
	}
	mapper := MustDerive[pair]()
	got, err := mapper(NewRow(Int(1), String("b"), String("extra"), Null()))
	if err != nil {
		t.Fatal(err)
	}
	if got.A != 1 || got.B != "b" {
		t.Errorf("unexpected %+v", got)
	}
}

func TestDerive_MissingField(t *testing.T) {
	type pair struct {
		A int
		B string
	}
	mapper := MustDerive[pair]()
	got, err := mapper(NewRow(Int(1)))
	if !errors.Is(err, ErrMissingFieldValue) {
		t.Fatalf("Expected ErrMissingFieldValue, got %v", err)
	}
	var rowErr *RowConversionError
	if !errors.As(err, &rowErr) || rowErr.Field != "B" {
		t.Errorf("Expected the error to name B, got %v", err)
	}
	if got != (pair{}) {
		t.Errorf("Expected the zero value, got %+v", got)
	}
}

func TestDerive_FirstFailingFieldWins(t *testing.T) {
	type triple struct {
		A int8
		B string
		C bool
	}
	mapper := MustDerive[triple]()
	_, err := mapper(NewRow(Int(1000), Int(1), String("x")))
	var rowErr *RowConversionError
	if !errors.As(err, &rowErr) || rowErr.Field != "A" {
		t.Fatalf("Expected the error to name A, got %v", err)
	}
	if !errors.Is(err, ErrValueOutOfBounds) {
		t.Errorf("Expected ErrValueOutOfBounds, got %v", err)
	}
}

func TestDerive_Unit(t *testing.T) {
	mapper, err := Derive[Unit]()
	if err != nil {
		t.Fatal(err)
	}
	if _, err = mapper(NewRow(Int(1), Int(2))); err != nil {
		t.Errorf("Expected every row to map to Unit, got %v", err)
	}
	if _, err = mapper(NewRow()); err != nil {
		t.Errorf("Expected an empty row to map to Unit, got %v", err)
	}
}

func TestDerive_UnsupportedShapes(t *testing.T) {
	type hidden struct {
		id int
	}
	type channel struct {
		C chan int
	}
	if _, err := Derive[hidden](); !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("Expected unexported fields to be rejected, got %v", err)
	}
	if _, err := Derive[channel](); !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("Expected unsupported field types to be rejected, got %v", err)
	}
	if _, err := Derive[int](); !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("Expected non structs to be rejected, got %v", err)
	}
	var h hidden
	_ = h.id
}

// scannedAccount reads itself like generated code does.
type scannedAccount struct {
	ID   int64
	Name string
}

func (a *scannedAccount) ScanRow(row *Row) error {
	value, ok := row.Next()
	if !ok {
		return MissingField("ID")
	}
	id, err := FromSQL[int64](value)
	if err != nil {
		return FieldError("ID", err)
	}
	if value, ok = row.Next(); !ok {
		return MissingField("Name")
	}
	name, err := FromSQL[string](value)
	if err != nil {
		return FieldError("Name", err)
	}
	a.ID, a.Name = id, name
	return nil
}

func TestMapperFor_PrefersRowScanner(t *testing.T) {
	mapper, err := MapperFor[scannedAccount]()
	if err != nil {
		t.Fatal(err)
	}
	got, err := mapper(NewRow(Int(4), String("d")))
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 4 || got.Name != "d" {
		t.Errorf("unexpected %+v", got)
	}
	if _, err = mapper(NewRow(Int(4))); !errors.Is(err, ErrMissingFieldValue) {
		t.Errorf("Expected ErrMissingFieldValue, got %v", err)
	}
}
