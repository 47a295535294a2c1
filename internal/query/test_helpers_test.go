package query

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var statusNames = []string{"Draft", "Active", "Discontinued"}

type item struct {
	ID        uuid.UUID
	Name      string
	Note      *string
	Qty       int
	Big       int64
	Price     decimal.Decimal
	Weight    float64
	Ratio     float32
	Active    bool
	Born      time.Time
	CreatedAt time.Time
	Owner     *uuid.UUID
	Status    int
}

var itemSchema = NewSchema[item]().
	UUID("id", "id", func(i item) uuid.UUID { return i.ID }).
	Text("name", "name", func(i item) string { return i.Name }).
	TextPtr("note", "note", func(i item) *string { return i.Note }).
	Int("qty", "qty", func(i item) int { return i.Qty }).
	Int64("big", "big", func(i item) int64 { return i.Big }).
	Decimal("price", "price", func(i item) decimal.Decimal { return i.Price }).
	Float64("weight", "weight", func(i item) float64 { return i.Weight }).
	Float32("ratio", "ratio", func(i item) float32 { return i.Ratio }).
	Bool("active", "is_active", func(i item) bool { return i.Active }).
	Date("born", "born_on", func(i item) time.Time { return i.Born }).
	Time("createdAt", "created_at", func(i item) time.Time { return i.CreatedAt }).
	UUIDPtr("ownerId", "owner_id", func(i item) *uuid.UUID { return i.Owner }).
	Enum("status", "status", statusNames, func(i item) int { return i.Status }).
	Searchable("name", "note").
	DefaultSort("createdAt")

var fixtureBase = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// fixture returns six records with distinct values per field. Record i was
// created i hours after fixtureBase.
func fixture() []item {
	names := []string{"Alpha", "beta", "Gamma", "Delta", "Epsilon", "Zeta"}
	notes := []*string{strPtr("red apple"), nil, strPtr(""), strPtr("green"), strPtr("Red car"), nil}
	prices := []string{"1.50", "10.00", "10.5", "20", "99.99", "0"}
	ratios := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	statuses := []int{0, 1, 2, 1, 0, 1}

	out := make([]item, 0, len(names))
	for i, name := range names {
		it := item{
			ID:        uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-00000000000%d", i+1)),
			Name:      name,
			Note:      notes[i],
			Qty:       (i + 1) * 5,
			Big:       int64(i) * 1_000_000_000,
			Price:     decimal.RequireFromString(prices[i]),
			Weight:    float64(i + 1),
			Ratio:     ratios[i],
			Active:    i%2 == 0,
			Born:      time.Date(2020, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			CreatedAt: fixtureBase.Add(time.Duration(i) * time.Hour),
			Status:    statuses[i],
		}
		if i < 2 {
			owner := uuid.MustParse("11111111-1111-1111-1111-111111111111")
			it.Owner = &owner
		}
		out = append(out, it)
	}
	return out
}

func names(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func itemName(i item) string { return i.Name }
