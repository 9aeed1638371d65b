// Package typesafe binds Go function fields to GraphQL operations.
//
// An API is declared as a struct whose exported func fields each describe one
// operation. Bind derives a request document from every field's signature,
// sends it through a transport, and coerces the field of the response into
// the declared result type with exact validation:
//
//	type SuperHeroes struct {
//		Heroes   func(ctx context.Context) ([]Hero, error)
//		HeroByID func(ctx context.Context, id string) (*Hero, error) `graphql:"hero" args:"id"`
//		Register func(ctx context.Context, hero HeroInput) (Hero, error) `graphql:",mutation" args:"hero"`
//	}
//
//	var api SuperHeroes
//	if err := typesafe.Bind(client, &api); err != nil { ... }
//	heroes, err := api.Heroes(ctx)
//
// Every func field must have the shape func(context.Context, params...) (T, error).
// The field name is the struct field name with its first letter lower-cased,
// with a "get" prefix dropped when an upper-case letter follows it. A graphql
// tag overrides the name and may select a mutation; `graphql:"-"` leaves the
// field unbound. Parameters are named by the comma separated args tag.
//
// Result types map onto GraphQL values as follows. bool, the sized integer
// kinds (bounds checked), float32, float64, Char, string, *big.Int and
// decimal.Decimal are built in. Types registered with Enum, or string types
// with an EnumValues method, are enums. Types registered with Scalar, or
// whose pointer implements encoding.TextUnmarshaler such as time.Time, are
// custom scalars built from text. Structs are objects selecting all their
// exported fields, and slices are lists. Pointers, slices, strings, enums,
// scalars, objects and the big number types accept null as their zero value.
//
// Every failure is reported as a single *Error whose message is stable and
// whose Kind classifies it. Setup problems, such as an unsupported result
// type, are reported by Bind before any request is sent.
package typesafe
