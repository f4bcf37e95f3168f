package recwire_test

import (
	"time"

	"github.com/google/uuid"

	recwire "github.com/recwire/recwire"
)

// Fixture records shared across the test files. Registered once on the
// default engine; tests that exercise registration behavior itself construct
// their own engines.

type Point struct {
	// The json tag decouples the wire name from the Go name on purpose.
	X float64 `json:"z"`
	Y float64 `json:"y"`
}

type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

type Product struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Cost     float64   `json:"cost"`
	Released time.Time `json:"released"`
}

type ShoppingCart struct {
	Items []Product `json:"items"`
}

func (c ShoppingCart) Total() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.Cost
	}
	return sum
}

type ProductList struct {
	Products map[uuid.UUID]Product `json:"products"`
}

type Zoo struct {
	Animals map[string]int `json:"animals"`
}

type Recursive struct {
	Name  string     `json:"name"`
	Child *Recursive `json:"child"`
}

type Reading struct {
	Day   Weekday  `json:"day"`
	Value any      `json:"value"`
	Tags  Tags     `json:"tags"`
	Note  *string  `json:"note"`
	Score *float64 `json:"score"`
}

// Tags exercises the set classification (map with empty struct values).
type Tags map[string]struct{}

type Pet struct {
	Name string `json:"name"`
}

type Dog struct {
	Pet
	Breed string `json:"breed"`
}

type Cat struct {
	Pet
	Indoor bool `json:"indoor"`
}

// Kennel holds a base-typed field; decode keeps the base's view of
// discriminated wire input.
type Kennel struct {
	Resident Pet `json:"resident"`
}

func init() {
	e := recwire.Default()

	recwire.MustRegisterEnum[Weekday](e, recwire.Members{
		{Name: "Monday", Value: Monday},
		{Name: "Tuesday", Value: Tuesday},
		{Name: "Wednesday", Value: Wednesday},
		{Name: "Thursday", Value: Thursday},
		{Name: "Friday", Value: Friday},
		{Name: "Saturday", Value: Saturday},
		{Name: "Sunday", Value: Sunday},
	})

	recwire.MustRegister[Point](e)
	recwire.MustRegister[Product](e,
		recwire.Doc("A product in the catalog"),
		recwire.WithDefault("Name", "unnamed"),
		recwire.FieldInfo("Cost", recwire.FieldMeta{Description: "unit price"}),
	)
	recwire.MustRegister[ShoppingCart](e,
		recwire.SerializeProperties("Total"),
	)
	recwire.MustRegister[ProductList](e)
	recwire.MustRegister[Zoo](e,
		recwire.WithDefaultFactory("Animals", func() any { return map[string]int{} }),
	)
	recwire.MustRegister[Recursive](e)
	recwire.MustRegister[Reading](e,
		recwire.FieldShape("Value", recwire.Union(recwire.Of[Point](), recwire.Float())),
		recwire.FieldShape("Score", recwire.Nullable(recwire.Float())),
		recwire.WithDefaultFactory("Tags", func() any { return Tags{} }),
	)

	recwire.MustRegister[Pet](e, recwire.WithDiscriminator(""))
	recwire.MustRegister[Dog](e, recwire.Extends[Pet]())
	recwire.MustRegister[Cat](e, recwire.Extends[Pet]())
	recwire.MustRegister[Kennel](e)
}

func strptr(s string) *string { return &s }
