package query

import (
	"context"
	"fmt"
	"time"

	"github.com/bignyap/go-sqlhelper/converter"
	"github.com/bignyap/go-sqlhelper/database"
	"github.com/bignyap/go-sqlhelper/logger/api"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jmoiron/sqlx"
)

// Frame is the tabular result of a query.
type Frame = dataframe.DataFrame

// ToDataFrame binds params into sql, runs it on engine and loads the rows.
func ToDataFrame(ctx context.Context, engine *database.Engine, sql string, params map[string]interface{}) (Frame, error) {
	cq, err := Compile(engine, sql)
	if err != nil {
		return Frame{}, err
	}
	if cq, err = cq.Bind(params); err != nil {
		return Frame{}, err
	}
	return CompiledToDataFrame(ctx, engine, cq)
}

// CompiledToDataFrame runs a compiled query whose parameters are all bound.
func CompiledToDataFrame(ctx context.Context, engine *database.Engine, cq *database.CompiledQuery) (df Frame, err error) {
	args, err := cq.Args()
	if err != nil {
		return Frame{}, err
	}

	start := time.Now()
	ctx, span := startSpan(ctx, engine, cq)
	defer func() {
		finishSpan(ctx, span, engine, start, df.Nrow(), err)
	}()

	rows, err := engine.DB().QueryxContext(ctx, cq.SQL, args...)
	if err != nil {
		return Frame{}, database.WrapError("query", err)
	}
	defer rows.Close()

	if df, err = rowsToFrame(rows); err != nil {
		return Frame{}, err
	}

	log().Debug(ctx, "query loaded",
		api.Any("params", cq.Names),
		api.Int("rows", df.Nrow()),
		api.Int("columns", df.Ncol()),
		api.Duration("elapsed", time.Since(start)),
	)
	return df, nil
}

func rowsToFrame(rows *sqlx.Rows) (Frame, error) {
	columns, err := rows.Columns()
	if err != nil {
		return Frame{}, database.WrapError("read columns", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return Frame{}, database.WrapError("read column types", err)
	}

	types := make(map[string]series.Type, len(columns))
	for i, ct := range columnTypes {
		if t, ok := converter.SeriesType(ct); ok {
			types[columns[i]] = t
		}
	}

	records := [][]string{columns}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return Frame{}, database.WrapError("scan row", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = converter.ToCell(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return Frame{}, database.WrapError("iterate rows", err)
	}

	if len(records) == 1 {
		return emptyFrame(columns, types), nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithTypes(types),
		dataframe.NaNValues([]string{converter.NA}),
	)
	if df.Err != nil {
		return Frame{}, fmt.Errorf("load data frame: %w", df.Err)
	}
	return df, nil
}

func emptyFrame(columns []string, types map[string]series.Type) Frame {
	cols := make([]series.Series, len(columns))
	for i, name := range columns {
		t, ok := types[name]
		if !ok {
			t = series.String
		}
		cols[i] = series.New([]string{}, t, name)
	}
	return dataframe.New(cols...)
}
