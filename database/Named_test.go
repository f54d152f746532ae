package database_test

import (
	"testing"

	"github.com/bignyap/go-sqlhelper/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileNamed_Placeholders(t *testing.T) {
	tests := []struct {
		name     string
		bindType int
		query    string
		wantSQL  string
		names    []string
	}{
		{
			name:     "question",
			bindType: sqlx.QUESTION,
			query:    "SELECT * FROM t WHERE a = :a AND b = :b",
			wantSQL:  "SELECT * FROM t WHERE a = ? AND b = ?",
			names:    []string{"a", "b"},
		},
		{
			name:     "dollar with repeated name",
			bindType: sqlx.DOLLAR,
			query:    "SELECT :x + :y + :x",
			wantSQL:  "SELECT $1 + $2 + $3",
			names:    []string{"x", "y"},
		},
		{
			name:     "sqlserver",
			bindType: sqlx.AT,
			query:    "SELECT * FROM t WHERE d >= :start_date",
			wantSQL:  "SELECT * FROM t WHERE d >= @p1",
			names:    []string{"start_date"},
		},
		{
			name:     "casts, times and escapes are not parameters",
			bindType: sqlx.DOLLAR,
			query:    `SELECT a::int, '12:30', x\:y FROM t WHERE id = :id`,
			wantSQL:  `SELECT a::int, '12:30', x:y FROM t WHERE id = $1`,
			names:    []string{"id"},
		},
		{
			name:     "quoted strings and comments are skipped",
			bindType: sqlx.QUESTION,
			query:    "SELECT ':nope', \"col:x\" -- :hidden\nFROM t /* :also */ WHERE v = :v",
			wantSQL:  "SELECT ':nope', \"col:x\" -- :hidden\nFROM t /* :also */ WHERE v = ?",
			names:    []string{"v"},
		},
		{
			name:     "no parameters",
			bindType: sqlx.QUESTION,
			query:    "SELECT 1",
			wantSQL:  "SELECT 1",
			names:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cq, err := database.CompileNamed(tt.query, tt.bindType)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, cq.SQL)
			assert.Equal(t, tt.names, cq.Names)
			assert.Equal(t, tt.query, cq.Text)
			assert.Len(t, cq.Params, len(tt.names))
		})
	}
}

func TestCompileNamed_Unterminated(t *testing.T) {
	_, err := database.CompileNamed("SELECT 'oops", sqlx.QUESTION)
	assert.Error(t, err)

	_, err = database.CompileNamed("SELECT 1 /* oops", sqlx.QUESTION)
	assert.Error(t, err)
}

func TestCompiledQuery_BindAndArgs(t *testing.T) {
	cq, err := database.CompileNamed("SELECT :a, :b, :a", sqlx.QUESTION)
	require.NoError(t, err)

	_, err = cq.Args()
	assert.ErrorIs(t, err, database.ErrMissingParameter)

	_, err = cq.Bind(map[string]interface{}{"c": 1})
	assert.ErrorIs(t, err, database.ErrUnknownParameter)

	bound, err := cq.Bind(map[string]interface{}{"a": 1, "b": nil})
	require.NoError(t, err)
	assert.True(t, bound.IsBound("b"))
	assert.False(t, cq.IsBound("a"), "Bind must not mutate the receiver")

	args, err := bound.Args()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, nil, 1}, args)
}
