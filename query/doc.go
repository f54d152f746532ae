// Package query runs ":name" parameterized SQL against an Engine and returns
// the rows as a gota DataFrame.
//
// Functions taking an *database.Engine work on any engine. The engine-less
// variants (DataFrame, Params, Parameters, FileParams, FileDataFrame) resolve
// the process-wide engine from database.Default, which reads config.ini on
// first use.
package query
