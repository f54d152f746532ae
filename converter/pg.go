package converter

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// The Null* helpers turn optional notebook inputs into nullable query
// parameters. A nil pointer binds SQL NULL. The pgtype values implement
// driver.Valuer, so they bind on every driver, not only pgx.

func NullInt(v *int) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: int64(*v), Valid: true}
}

func NullFloat(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: *v, Valid: true}
}

func NullText(ptr *string) pgtype.Text {
	if ptr == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *ptr, Valid: true}
}

func NullBool(ptr *bool) pgtype.Bool {
	if ptr == nil {
		return pgtype.Bool{Valid: false}
	}
	return pgtype.Bool{Bool: *ptr, Valid: true}
}

func NullTimestamp(ptr *time.Time) pgtype.Timestamp {
	if ptr == nil {
		return pgtype.Timestamp{Valid: false}
	}
	return pgtype.Timestamp{Time: *ptr, Valid: true}
}

// NullUnixSeconds binds a timestamp as integer seconds, for tables that store
// epoch columns.
func NullUnixSeconds(ptr *time.Time) pgtype.Int8 {
	if ptr == nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: ToUnixTime(*ptr), Valid: true}
}
