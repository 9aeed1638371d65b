package typesafe_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	typesafe "github.com/ggoodman/typesafe-graphql-go"
	"github.com/ggoodman/typesafe-graphql-go/transport"
)

func TestDescribe(t *testing.T) {
	c := typesafe.New(transport.Func(nil), typesafe.Enum[Level]("LOW", "HIGH"))

	ops, err := typesafe.Describe(c, HeroesAPI{})
	require.NoError(t, err)
	require.Len(t, ops, 4)

	byID := ops[1]
	require.Equal(t, "heroByID", byID.Member)
	require.Equal(t, "hero", byID.Field)
	require.Equal(t, "query", byID.Type)
	require.Equal(t, "hero {name homeRealm powers suit}", byID.Selection)
	require.Len(t, byID.Arguments, 2)
	require.Equal(t, "id", byID.Arguments[0].Name)
	require.Equal(t, "string", byID.Arguments[0].Schema.Type)
	require.Equal(t, []any{"HEARTS", "SPADES"}, byID.Arguments[1].Schema.Enum)

	require.Equal(t, "mutation", ops[2].Type)
	require.Equal(t, "addHero", ops[2].Field)

	result := byID.Result
	require.Equal(t, "object", result.Type)
	var names []string
	for p := result.Properties.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	require.Equal(t, []string{"name", "homeRealm", "powers", "suit"}, names)
	// Strings, pointers, lists and enums all accept null.
	require.Empty(t, result.Required)

	powers, ok := result.Properties.Get("powers")
	require.True(t, ok)
	require.Equal(t, "array", powers.Type)
	require.Equal(t, "string", powers.Items.Type)

	ptrOps, err := typesafe.Describe(c, reflect.TypeFor[*HeroesAPI]())
	require.NoError(t, err)
	require.Len(t, ptrOps, len(ops))
	for i := range ops {
		require.Equal(t, ops[i].Selection, ptrOps[i].Selection)
	}

	_, err = typesafe.Describe(c, 42)
	require.True(t, typesafe.IsKind(err, typesafe.KindConfiguration))
}

func TestResultSchema(t *testing.T) {
	c := typesafe.New(transport.Func(nil))

	s, err := c.ResultSchema(reflect.TypeFor[int8]())
	require.NoError(t, err)
	require.Equal(t, "integer", s.Type)
	require.Equal(t, json.Number("-128"), s.Minimum)
	require.Equal(t, json.Number("127"), s.Maximum)

	s, err = c.ResultSchema(reflect.TypeFor[[]Hero]())
	require.NoError(t, err)
	b, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "array",
		"items": {
			"type": "object",
			"title": "`+qualified[Hero]()+`",
			"properties": {
				"name": {"type": "string"},
				"homeRealm": {"type": "string"},
				"powers": {"type": "array", "items": {"type": "string"}},
				"suit": {"type": "string", "title": "`+qualified[Suit]()+`", "enum": ["HEARTS", "SPADES"]}
			}
		}
	}`, string(b))

	_, err = c.ResultSchema(reflect.TypeFor[chan int]())
	require.EqualError(t, err, "typesafe: unsupported type chan int")
}
