package postgresql

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filter "github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain"
)

func compile(t *testing.T, text string, opts ...Option) Clause {
	t.Helper()
	result, err := filter.Compile[Clause](NewAdapter(opts...), text)
	require.NoError(t, err)
	assert.Equal(t, BackendName, result.Backend())
	return result.Predicate()
}

func TestAdapterCompile(t *testing.T) {
	tests := []struct {
		name string
		text string
		sql  string
		args pgx.NamedArgs
	}{
		{
			name: "equality",
			text: `name = "O'Brien"`,
			sql:  `"name" = @p1`,
			args: pgx.NamedArgs{"p1": "O'Brien"},
		},
		{
			name: "and with nested or",
			text: "a=1 AND (b<2 OR c!=3)",
			sql:  `"a" = @p1 AND ("b" < @p2 OR "c" <> @p3)`,
			args: pgx.NamedArgs{"p1": int32(1), "p2": int32(2), "p3": int32(3)},
		},
		{
			name: "or of ands",
			text: "(a=1 b=2) OR c>=3",
			sql:  `"a" = @p1 AND "b" = @p2 OR "c" >= @p3`,
			args: pgx.NamedArgs{"p1": int32(1), "p2": int32(2), "p3": int32(3)},
		},
		{
			name: "negation of comparison",
			text: "-x=5",
			sql:  `NOT "x" = @p1`,
			args: pgx.NamedArgs{"p1": int32(5)},
		},
		{
			name: "negation of disjunction",
			text: "NOT (a<=1 OR a>9)",
			sql:  `NOT ("a" <= @p1 OR "a" > @p2)`,
			args: pgx.NamedArgs{"p1": int32(1), "p2": int32(9)},
		},
		{
			name: "membership",
			text: "tags:red",
			sql:  `@p1 = ANY("tags")`,
			args: pgx.NamedArgs{"p1": "red"},
		},
		{
			name: "prefix escapes like metacharacters",
			text: `name = "50%_off*"`,
			sql:  `"name" LIKE @p1`,
			args: pgx.NamedArgs{"p1": `50\%\_off%`},
		},
		{
			name: "suffix",
			text: "email = *@example.com",
			sql:  `"email" LIKE @p1`,
			args: pgx.NamedArgs{"p1": "%@example.com"},
		},
		{
			name: "qualified column",
			text: "u.age > 2147483648",
			sql:  `"u"."age" > @p1`,
			args: pgx.NamedArgs{"p1": int64(2147483648)},
		},
		{
			name: "timestamps and durations",
			text: "created >= 2024-01-02 ttl < 1.5s",
			sql:  `"created" >= @p1 AND "ttl" < @p2`,
			args: pgx.NamedArgs{"p1": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "p2": 1500.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause := compile(t, tt.text)
			assert.Equal(t, tt.sql, clause.SQL)
			assert.Equal(t, tt.args, clause.Args)
		})
	}
}

func TestAdapterNeverInterpolatesValues(t *testing.T) {
	clause := compile(t, `name = "x'; DROP TABLE users; --" OR tags:"1 OR 1=1"`)
	assert.NotContains(t, clause.SQL, "DROP")
	assert.NotContains(t, clause.SQL, "1=1")
	assert.Len(t, clause.Args, 2)
}

func TestAdapterSanitizesIdentifiers(t *testing.T) {
	clause := compile(t, "weird = 1", WithColumnMapping(map[string]string{"weird": `we"ird`}))
	assert.Equal(t, `"we""ird" = @p1`, clause.SQL)
}

func TestAdapterOptions(t *testing.T) {
	clause := compile(t, "author.name = Bob AND tags:go",
		WithColumnMapping(map[string]string{"author.name": "a.full_name"}),
		WithPlaceholderPrefix("f"),
	)
	assert.Equal(t, `"a"."full_name" = @f1 AND @f2 = ANY("tags")`, clause.SQL)
	assert.Equal(t, pgx.NamedArgs{"f1": "Bob", "f2": "go"}, clause.Args)
}

func TestAdapterKeepsPlaceholdersUnique(t *testing.T) {
	c := filter.NewCompiler[Clause](NewAdapter())
	first, err := c.CompileString("a=1")
	require.NoError(t, err)
	second, err := c.CompileString("a=2")
	require.NoError(t, err)

	assert.Equal(t, `"a" = @p1`, first.Predicate().SQL)
	assert.Equal(t, `"a" = @p2`, second.Predicate().SQL)
}

func TestAdapterRejectsEmptyCombination(t *testing.T) {
	_, err := NewAdapter().And(nil)
	assert.Error(t, err)
}
