package typesafe_test

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	typesafe "github.com/ggoodman/typesafe-graphql-go"
	"github.com/ggoodman/typesafe-graphql-go/graphqltest"
)

func qualified[T any]() string {
	t := reflect.TypeFor[T]()
	return t.PkgPath() + "." + t.Name()
}

func bind[T any](t *testing.T, f *graphqltest.Fixture, opts ...typesafe.Option) *T {
	t.Helper()
	api := new(T)
	require.NoError(t, typesafe.Bind(f.Client(opts...), api))
	return api
}

type BoolAPI struct {
	Bool func(context.Context) (bool, error)
}

type BooleanAPI struct {
	Bool func(context.Context) (*bool, error)
}

func TestBool(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'bool':true")
	api := bind[BoolAPI](t, f)

	got, err := api.Bool(context.Background())
	require.NoError(t, err)
	require.True(t, got)
	require.Equal(t, "bool", f.Query())
	require.JSONEq(t, `{"query":"query { bool }"}`, string(f.Last().Body))
}

func TestBool_Rejects(t *testing.T) {
	cases := map[string]struct {
		data     string
		rendered string
	}{
		"null":   {"'bool':null", "null"},
		"string": {"'bool':'xxx'", `"xxx"`},
		"number": {"'bool':123", "123"},
		"list":   {"'bool':[123]", "[123]"},
		"object": {"'bool':{'foo':'bar'}", `{"foo":"bar"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := graphqltest.New(t).ReturnsData(tc.data)
			api := bind[BoolAPI](t, f)

			_, err := api.Bool(context.Background())
			require.EqualError(t, err, "invalid boolean value for "+qualified[BoolAPI]()+"#bool: "+tc.rendered)
			require.True(t, typesafe.IsKind(err, typesafe.KindCoercion))
		})
	}
}

func TestBoolPointer(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'bool':true")
	api := bind[BooleanAPI](t, f)

	got, err := api.Bool(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, *got)

	f.ReturnsData("'bool':null")
	got, err = api.Bool(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
}

type ByteAPI struct {
	Code func(context.Context) (*int8, error)
}

type PrimitiveByteAPI struct {
	Code func(context.Context) (int8, error)
}

func TestByte(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'code':5")

	code, err := bind[ByteAPI](t, f).Code(context.Background())
	require.NoError(t, err)
	require.Equal(t, int8(5), *code)
	require.Equal(t, "code", f.Query())

	prim, err := bind[PrimitiveByteAPI](t, f).Code(context.Background())
	require.NoError(t, err)
	require.Equal(t, int8(5), prim)

	for _, n := range []string{"128", "-129"} {
		f.ReturnsData("'code':" + n)
		_, err := bind[ByteAPI](t, f).Code(context.Background())
		require.EqualError(t, err, "invalid *int8 value for "+qualified[ByteAPI]()+"#code: "+n)

		_, err = bind[PrimitiveByteAPI](t, f).Code(context.Background())
		require.EqualError(t, err, "invalid int8 value for "+qualified[PrimitiveByteAPI]()+"#code: "+n)
	}
}

type CharacterAPI struct {
	Code func(context.Context) (*typesafe.Char, error)
}

type PrimitiveCharAPI struct {
	Code func(context.Context) (typesafe.Char, error)
}

func TestChar(t *testing.T) {
	f := graphqltest.New(t)
	boxed := bind[CharacterAPI](t, f)
	prim := bind[PrimitiveCharAPI](t, f)
	ctx := context.Background()

	for _, data := range []string{"'code':'a'", "'code':97"} {
		f.ReturnsData(data)
		c, err := boxed.Code(ctx)
		require.NoError(t, err)
		require.Equal(t, typesafe.Char('a'), *c)
		require.Equal(t, "code", f.Query())

		p, err := prim.Code(ctx)
		require.NoError(t, err)
		require.Equal(t, typesafe.Char('a'), p)
	}

	for data, rendered := range map[string]string{
		"'code':'ab'":  `"ab"`,
		"'code':65536": "65536",
		"'code':-15":   "-15",
	} {
		f.ReturnsData(data)
		_, err := boxed.Code(ctx)
		require.EqualError(t, err, "invalid *char value for "+qualified[CharacterAPI]()+"#code: "+rendered)

		_, err = prim.Code(ctx)
		require.EqualError(t, err, "invalid char value for "+qualified[PrimitiveCharAPI]()+"#code: "+rendered)
	}
}

type ShortAPI struct {
	Code func(context.Context) (int16, error)
}

type IntAPI struct {
	Code func(context.Context) (int32, error)
}

type LongAPI struct {
	Code func(context.Context) (int64, error)
}

type UnsignedAPI struct {
	Code func(context.Context) (uint16, error)
}

func TestIntegers(t *testing.T) {
	ctx := context.Background()
	f := graphqltest.New(t)
	short := bind[ShortAPI](t, f)
	i32 := bind[IntAPI](t, f)
	long := bind[LongAPI](t, f)
	unsigned := bind[UnsignedAPI](t, f)

	f.ReturnsData("'code':5")
	s, err := short.Code(ctx)
	require.NoError(t, err)
	require.Equal(t, int16(5), s)
	i, err := i32.Code(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(5), i)
	l, err := long.Code(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), l)
	u, err := unsigned.Code(ctx)
	require.NoError(t, err)
	require.Equal(t, uint16(5), u)

	reject := func(call func() error, typeName, api, n string) {
		t.Helper()
		f.ReturnsData("'code':" + n)
		require.EqualError(t, call(), "invalid "+typeName+" value for "+api+"#code: "+n)
	}
	shortErr := func() error { _, err := short.Code(ctx); return err }
	intErr := func() error { _, err := i32.Code(ctx); return err }
	longErr := func() error { _, err := long.Code(ctx); return err }
	unsignedErr := func() error { _, err := unsigned.Code(ctx); return err }

	reject(shortErr, "int16", qualified[ShortAPI](), "32768")
	reject(shortErr, "int16", qualified[ShortAPI](), "-32769")
	reject(intErr, "int32", qualified[IntAPI](), "2147483648")
	reject(intErr, "int32", qualified[IntAPI](), "-2147483649")
	reject(intErr, "int32", qualified[IntAPI](), "123.456")
	reject(longErr, "int64", qualified[LongAPI](), "9223372036854775808")
	reject(longErr, "int64", qualified[LongAPI](), "-9223372036854775809")
	reject(unsignedErr, "uint16", qualified[UnsignedAPI](), "65536")
	reject(unsignedErr, "uint16", qualified[UnsignedAPI](), "-1")
}

type FloatAPI struct {
	Number func(context.Context) (float32, error)
}

type DoubleAPI struct {
	Number func(context.Context) (*float64, error)
}

func TestFloats(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'number':123.456")
	ctx := context.Background()

	f32, err := bind[FloatAPI](t, f).Number(ctx)
	require.NoError(t, err)
	require.Equal(t, float32(123.456), f32)
	require.Equal(t, "number", f.Query())

	f64, err := bind[DoubleAPI](t, f).Number(ctx)
	require.NoError(t, err)
	require.Equal(t, 123.456, *f64)
}

type BigIntegerAPI struct {
	Number func(context.Context) (*big.Int, error)
}

type BigDecimalAPI struct {
	Number func(context.Context) (decimal.Decimal, error)
}

func TestBigNumbers(t *testing.T) {
	f := graphqltest.New(t)
	ctx := context.Background()
	ints := bind[BigIntegerAPI](t, f)
	decs := bind[BigDecimalAPI](t, f)

	for _, n := range []string{"1234567890123456789012345678901234567890", "123456"} {
		f.ReturnsData("'number':" + n)
		got, err := ints.Number(ctx)
		require.NoError(t, err)
		require.Equal(t, n, got.String())
		require.Equal(t, "number", f.Query())
	}

	for _, n := range []string{"1234567890.1234567890123456789012345678901234567890", "123.456"} {
		f.ReturnsData("'number':" + n)
		got, err := decs.Number(ctx)
		require.NoError(t, err)
		require.True(t, decimal.RequireFromString(n).Equal(got), "got %s", got)
	}
}

type StringAPI struct {
	Greeting func(context.Context) (string, error)
}

func TestString(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'greeting':'dummy-greeting'")

	got, err := bind[StringAPI](t, f).Greeting(context.Background())
	require.NoError(t, err)
	require.Equal(t, "dummy-greeting", got)
	require.Equal(t, "greeting", f.Query())
}

func TestString_Failures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		f := graphqltest.New(t).Returns(http.StatusInternalServerError, "text/plain", "failed")
		_, err := bind[StringAPI](t, f).Greeting(context.Background())
		require.EqualError(t, err, "expected successful status code but got 500 Internal Server Error:\nfailed")
		require.True(t, typesafe.IsKind(err, typesafe.KindTransport))
	})

	t.Run("service errors", func(t *testing.T) {
		f := graphqltest.New(t).ReturnsErrors("[{'message':'failed'}]")
		_, err := bind[StringAPI](t, f).Greeting(context.Background())
		require.EqualError(t, err, "errors from service: [{\"message\":\"failed\"}]:\n  {\"query\":\"query { greeting }\"}")
		require.True(t, typesafe.IsKind(err, typesafe.KindService))
	})

	t.Run("missing field", func(t *testing.T) {
		f := graphqltest.New(t).ReturnsData("")
		_, err := bind[StringAPI](t, f).Greeting(context.Background())
		require.EqualError(t, err, "no data for 'greeting':\n  {}")
		require.True(t, typesafe.IsKind(err, typesafe.KindMissingField))
	})

	t.Run("null data", func(t *testing.T) {
		f := graphqltest.New(t).Returns(http.StatusOK, "application/json", `{"data":null}`)
		_, err := bind[StringAPI](t, f).Greeting(context.Background())
		require.EqualError(t, err, "no data for 'greeting':\n  null")
	})
}

// Serial is built with a valueOf factory.
type Serial struct{ n int }

type ScalarWithValueOfAPI struct {
	Foo func(context.Context) (Serial, error)
}

func TestScalarWithValueOf(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'foo':123456")
	api := bind[ScalarWithValueOfAPI](t, f, typesafe.Scalar[Serial](
		typesafe.ValueOf(func(s string) (Serial, error) {
			var n int
			for _, c := range s {
				n = n*10 + int(c-'0')
			}
			return Serial{n}, nil
		}),
	))

	got, err := api.Foo(context.Background())
	require.NoError(t, err)
	require.Equal(t, Serial{123456}, got)
	require.Equal(t, "foo", f.Query())
}

// Date is a calendar date built with a parse factory.
type Date struct{ time.Time }

func parseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	return Date{t}, err
}

type ScalarWithParseAPI struct {
	Now func(context.Context) (Date, error)
}

type TimeAPI struct {
	Now func(context.Context) (*time.Time, error)
}

func TestScalarWithParse(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'now':'2026-10-19'")
	api := bind[ScalarWithParseAPI](t, f, typesafe.Scalar[Date](typesafe.Parse(parseDate)))

	got, err := api.Now(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2026-10-19", got.Format(time.DateOnly))
	require.Equal(t, "now", f.Query())
}

func TestTextUnmarshalerScalar(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
	f := graphqltest.New(t).ReturnsData("'now':'" + now.Format(time.RFC3339) + "'")

	got, err := bind[TimeAPI](t, f).Now(context.Background())
	require.NoError(t, err)
	require.True(t, now.Equal(*got))
	require.Equal(t, "now", f.Query())
}

// Text is a text-constructible value.
type Text struct{ text string }

func newText(s string) Text { return Text{s} }

type NonScalarWithStringConstructor struct {
	Value Text
}

type NonScalarWithStringConstructorAPI struct {
	Foo func(context.Context) (NonScalarWithStringConstructor, error)
}

func TestObjectWithTextConstructibleField(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'foo':{'value':'1234'}")
	api := bind[NonScalarWithStringConstructorAPI](t, f, typesafe.Scalar[Text](typesafe.Constructor(newText)))

	got, err := api.Foo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1234", got.Value.text)
	require.Equal(t, "foo {value}", f.Query())
}

type FailingScalar struct{ text string }

type FailingScalarAPI struct {
	Foo func(context.Context) (FailingScalar, error)
}

func TestFailingScalar(t *testing.T) {
	var constructed int
	f := graphqltest.New(t).ReturnsData("'foo':'a'")
	api := bind[FailingScalarAPI](t, f, typesafe.Scalar[FailingScalar](
		typesafe.ValueOf(func(s string) FailingScalar { panic("dummy exception: " + s) }),
		typesafe.Constructor(func(s string) FailingScalar {
			constructed++
			return FailingScalar{s}
		}),
	))

	_, err := api.Foo(context.Background())
	require.EqualError(t, err, "can't create scalar "+qualified[FailingScalar]()+" value for "+qualified[FailingScalarAPI]()+"#foo")
	require.True(t, typesafe.IsKind(err, typesafe.KindCoercion))
	require.ErrorContains(t, errors.Unwrap(err), "dummy exception: a")
	require.Zero(t, constructed)
}

type ScalarWithStringConstructorMethod struct{ text string }

type ScalarWithStringConstructorMethodAPI struct {
	Foo func(context.Context) (*ScalarWithStringConstructorMethod, error)
}

func TestScalarWithAmbiguousValueOf(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'foo':'bar'")
	api := bind[ScalarWithStringConstructorMethodAPI](t, f, typesafe.Scalar[ScalarWithStringConstructorMethod](
		typesafe.ValueOf(func() *ScalarWithStringConstructorMethod { return nil }),
		typesafe.ValueOf(func(int) *ScalarWithStringConstructorMethod { return nil }),
		typesafe.ValueOf(func(string) {}),
		typesafe.Parse(func(s string) *ScalarWithStringConstructorMethod {
			return &ScalarWithStringConstructorMethod{text: s}
		}),
	))

	got, err := api.Foo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "bar", got.text)
	require.Equal(t, "foo", f.Query())
}

type ScalarWithOfConstructorMethod struct{ text string }

type ScalarWithOfConstructorMethodAPI struct {
	Foo func(context.Context) (ScalarWithOfConstructorMethod, error)
}

func TestScalarWithOf(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'foo':'bar'")
	api := bind[ScalarWithOfConstructorMethodAPI](t, f, typesafe.Scalar[ScalarWithOfConstructorMethod](
		typesafe.Constructor(func(s string) ScalarWithOfConstructorMethod { return ScalarWithOfConstructorMethod{s} }),
		typesafe.Of(func(s string) ScalarWithOfConstructorMethod { return ScalarWithOfConstructorMethod{"x-" + s} }),
	))

	got, err := api.Foo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "x-bar", got.text)
	require.Equal(t, "foo", f.Query())
}

type StringGettersAPI struct {
	GetGreeting func(context.Context) (string, error)
	Get         func(context.Context) (string, error)
	GetG        func(context.Context) (string, error)
	Gets        func(context.Context) (string, error)
	Getting     func(context.Context) (string, error)
}

func TestStringGetters(t *testing.T) {
	f := graphqltest.New(t)
	api := bind[StringGettersAPI](t, f)

	cases := []struct {
		field string
		call  func(context.Context) (string, error)
	}{
		{"greeting", api.GetGreeting},
		{"get", api.Get},
		{"g", api.GetG},
		{"gets", api.Gets},
		{"getting", api.Getting},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			f.ReturnsData("'" + tc.field + "':'foo'")
			got, err := tc.call(context.Background())
			require.NoError(t, err)
			require.Equal(t, "foo", got)
			require.Equal(t, tc.field, f.Query())
		})
	}
}
