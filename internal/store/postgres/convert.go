package postgres

// convert.go maps normalised field values to pgtype parameters and back.
//
// Values reaching the store are already normalised by the form sheet, so
// the write side only needs the canonical forms: string, decimal.Decimal,
// bool, YYYY-MM-DD date strings and []string. Empty values become NULL.

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a YYYY-MM-DD string to pgtype.Date.
func ToPgDate(s string) pgtype.Date {
	t, err := time.Parse(core.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// ToPgNumeric converts a decimal to pgtype.Numeric, keeping its exponent so
// a value entered as 400.00 is stored with two places.
func ToPgNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// ToPgUUID converts a string to pgtype.UUID.
// Returns invalid if the string is empty or not a valid UUID.
func ToPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// toParam returns the query parameter for a field value.
func toParam(f core.FieldSpec, val any) (any, error) {
	if val == nil {
		return nil, nil
	}

	switch {
	case f.IsBool():
		b, ok := val.(bool)
		if !ok {
			return nil, fmt.Errorf("%s: want bool, got %T", f.Name, val)
		}
		return pgtype.Bool{Bool: b, Valid: true}, nil
	case f.IsList():
		list, ok := val.([]string)
		if !ok {
			return nil, fmt.Errorf("%s: want []string, got %T", f.Name, val)
		}
		if len(list) == 0 {
			return nil, nil
		}
		return list, nil
	case f.Kind == core.KindNumber:
		d, ok := val.(decimal.Decimal)
		if !ok {
			return nil, fmt.Errorf("%s: want decimal, got %T", f.Name, val)
		}
		return ToPgNumeric(d), nil
	case f.Kind == core.KindDate:
		s, _ := val.(string)
		date := ToPgDate(s)
		if !date.Valid {
			return nil, fmt.Errorf("%s: invalid date %v", f.Name, val)
		}
		return date, nil
	default:
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("%s: want string, got %T", f.Name, val)
		}
		return ToPgText(s), nil
	}
}

// scanTarget returns a destination for the column selected by selectExpr.
func scanTarget(f core.FieldSpec) any {
	switch {
	case f.IsBool():
		return new(pgtype.Bool)
	case f.IsList():
		return new([]string)
	default:
		return new(pgtype.Text)
	}
}

// fromScanned turns a filled scanTarget back into a normalised value.
func fromScanned(f core.FieldSpec, dest any) (any, error) {
	switch v := dest.(type) {
	case *pgtype.Bool:
		if !v.Valid {
			return nil, nil
		}
		return v.Bool, nil
	case *[]string:
		if len(*v) == 0 {
			return nil, nil
		}
		return *v, nil
	case *pgtype.Text:
		if !v.Valid {
			return nil, nil
		}
		if f.Kind == core.KindNumber {
			d, err := decimal.NewFromString(v.String)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			return d, nil
		}
		return v.String, nil
	}
	return nil, fmt.Errorf("%s: unexpected scan target %T", f.Name, dest)
}
