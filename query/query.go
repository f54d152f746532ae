package query

import (
	"context"

	"github.com/bignyap/go-sqlhelper/database"
	"github.com/bignyap/go-sqlhelper/logger/api"
	"github.com/bignyap/go-sqlhelper/logger/factory"
)

func log() api.Logger {
	return factory.GetGlobalLogger().WithComponent("query")
}

// Compile parses the ":name" placeholders of sql for engine's driver.
func Compile(engine *database.Engine, sql string) (*database.CompiledQuery, error) {
	cq, err := database.CompileNamed(sql, engine.BindType())
	if err != nil {
		return nil, database.WrapError("compile query", err)
	}
	return cq, nil
}

// ParseQueryParams returns the parameter names of sql in order of first use.
func ParseQueryParams(engine *database.Engine, sql string) ([]string, error) {
	cq, err := Compile(engine, sql)
	if err != nil {
		return nil, err
	}
	return cq.Names, nil
}

// ParseQueryParameters returns every parameter of sql mapped to its value,
// which is nil until bound.
func ParseQueryParameters(engine *database.Engine, sql string) (map[string]interface{}, error) {
	cq, err := Compile(engine, sql)
	if err != nil {
		return nil, err
	}
	return cq.Params, nil
}

// ParseFileParams reads the SQL file at path and returns its parameter names.
func ParseFileParams(engine *database.Engine, path string) ([]string, error) {
	sql, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseQueryParams(engine, sql)
}

// Statement pairs a query with the values of its parameters.
type Statement struct {
	SQL    string
	Params map[string]interface{}
}

var (
	injectedDataFrame         = database.WithEngine(statementToDataFrame)
	injectedCompiledDataFrame = database.WithEngine(CompiledToDataFrame)
	injectedParams            = database.WithEngine(withoutContext(ParseQueryParams))
	injectedParameters        = database.WithEngine(withoutContext(ParseQueryParameters))
	injectedFileParams        = database.WithEngine(withoutContext(ParseFileParams))
)

func withoutContext[T any](fn func(*database.Engine, string) (T, error)) func(context.Context, *database.Engine, string) (T, error) {
	return func(_ context.Context, e *database.Engine, arg string) (T, error) {
		return fn(e, arg)
	}
}

func statementToDataFrame(ctx context.Context, e *database.Engine, st Statement) (Frame, error) {
	return ToDataFrame(ctx, e, st.SQL, st.Params)
}

// DataFrame runs sql on the shared engine.
func DataFrame(ctx context.Context, sql string, params map[string]interface{}) (Frame, error) {
	return injectedDataFrame(ctx, Statement{SQL: sql, Params: params})
}

// CompiledDataFrame runs an already compiled and bound query on the shared engine.
func CompiledDataFrame(ctx context.Context, cq *database.CompiledQuery) (Frame, error) {
	return injectedCompiledDataFrame(ctx, cq)
}

// FileDataFrame reads the SQL file at path and runs it on the shared engine.
func FileDataFrame(ctx context.Context, path string, params map[string]interface{}) (Frame, error) {
	sql, err := ReadFile(path)
	if err != nil {
		return Frame{}, err
	}
	return DataFrame(ctx, sql, params)
}

// Params is ParseQueryParams on the shared engine.
func Params(ctx context.Context, sql string) ([]string, error) {
	return injectedParams(ctx, sql)
}

// Parameters is ParseQueryParameters on the shared engine.
func Parameters(ctx context.Context, sql string) (map[string]interface{}, error) {
	return injectedParameters(ctx, sql)
}

// FileParams is ParseFileParams on the shared engine.
func FileParams(ctx context.Context, path string) ([]string, error) {
	return injectedFileParams(ctx, path)
}
