package value

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

func TestCastScalars(t *testing.T) {
	v, err := Cast("42", "int")
	require.NoError(t, err)
	require.Equal(t, int64(42), v)

	v, err = Cast("'hello'", "text")
	require.NoError(t, err)
	require.Equal(t, "hello", v)

	v, err = Cast("true", "boolean")
	require.NoError(t, err)
	require.Equal(t, true, v)

	v, err = Cast("3.5", "double")
	require.NoError(t, err)
	require.Equal(t, 3.5, v)

	v, err = Cast("null", "int")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestCastRejectsMalformedScalar(t *testing.T) {
	_, err := Cast("'abc'", "int")
	require.Error(t, err)
	require.True(t, cqlerr.IsInvalidRequest(err))

	_, err = Cast("maybe", "boolean")
	require.Error(t, err)
	require.True(t, cqlerr.IsInvalidRequest(err))
}

func TestCastCollections(t *testing.T) {
	v, err := Cast("[1, 2, 3]", "list<int>")
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2), int64(3)}, v)

	v, err = Cast("{'a', 'b'}", "set<text>")
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b"}, v)

	v, err = Cast("{'x': 1, 'y': 2}", "map<text, int>")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"x": int64(1), "y": int64(2)}, v)
}

func TestCastFrozenUnwrapsToBase(t *testing.T) {
	require.Equal(t, "map", BaseType("frozen<map<text, int>>"))
	v, err := Cast("{'k': 7}", "frozen<map<text, int>>")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"k": int64(7)}, v)
}

func TestCastUUID(t *testing.T) {
	id := uuid.New()
	v, err := Cast(id.String(), "uuid")
	require.NoError(t, err)
	require.Equal(t, id, v)

	v, err = Cast("uuid()", "uuid")
	require.NoError(t, err)
	require.IsType(t, uuid.UUID{}, v)

	_, err = Cast("'not-a-uuid'", "uuid")
	require.True(t, cqlerr.IsInvalidRequest(err))
}

func TestSplitTopKeepsNestedLiteralsWhole(t *testing.T) {
	parts := SplitTop("1, ['a', 'b'], {k: [1, 2]}, 'x, y'")
	require.Equal(t, []string{"1", "['a', 'b']", "{k: [1, 2]}", "'x, y'"}, parts)
}

func TestCutKeywordRespectsQuotesAndBoundaries(t *testing.T) {
	before, after, found := CutKeyword("name = 'WHERE is it' AND x = 1", "AND")
	require.True(t, found)
	require.Equal(t, "name = 'WHERE is it'", before)
	require.Equal(t, "x = 1", after)

	// "android" must not match the keyword AND.
	_, _, found = CutKeyword("android = 1", "AND")
	require.False(t, found)

	_, _, found = CutKeyword("f(a AND b)", "AND")
	require.False(t, found)
}

func TestCompareWidensNumerics(t *testing.T) {
	cmp, err := Compare(int64(2), 2.5)
	require.NoError(t, err)
	require.Equal(t, -1, cmp)

	cmp, err = Compare("b", "a")
	require.NoError(t, err)
	require.Equal(t, 1, cmp)

	cmp, err = Compare(nil, int64(0))
	require.NoError(t, err)
	require.Equal(t, -1, cmp)

	_, err = Compare(int64(1), "x")
	require.Error(t, err)
}

func TestRenderRoundTrips(t *testing.T) {
	v, err := Cast(Render("it's"), "text")
	require.NoError(t, err)
	require.Equal(t, "it's", v)

	v, err = Cast(Render(int64(99)), "bigint")
	require.NoError(t, err)
	require.Equal(t, int64(99), v)

	v, err = Cast(Render([]any{int64(1), int64(2)}), "list<int>")
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, v)

	require.Equal(t, "NULL", Render(nil))
}

func TestParseLiteral(t *testing.T) {
	require.Equal(t, int64(10), ParseLiteral("10"))
	require.Equal(t, 1.5, ParseLiteral("1.5"))
	require.Equal(t, "hi", ParseLiteral("'hi'"))
	require.Equal(t, true, ParseLiteral("true"))
	require.Nil(t, ParseLiteral("NULL"))
}

func TestParseUDTLiteral(t *testing.T) {
	fields := map[string]string{"street": "text", "zip": "int"}
	v, err := ParseUDTLiteral("{street: '5th Ave', zip: 10001}", fields)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"street": "5th Ave", "zip": int64(10001)}, v)
}
