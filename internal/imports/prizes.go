package imports

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/festbook-io/festbook/internal/registry"
)

// PrizeStrategy imports prizes. Business key: prize name within its category.
// Prizes have no natural-key dependencies to resolve; everything they
// reference is on the row itself.
type PrizeStrategy struct{}

func (PrizeStrategy) Entity() string { return "prizes" }

func (PrizeStrategy) Schema() Schema {
	return Schema{
		Entity: "prizes",
		Fields: []Field{
			{Name: fieldPrizeName, Label: "Prize", Aliases: []string{"Prize Name"}, Required: true},
			{Name: fieldCategory, Label: "Category", Aliases: []string{"Category Code"}, Kind: FieldCode, Required: true},
			{Name: fieldAverageValue, Label: "Average Value", Aliases: []string{"Value", "Avg Value"}, Kind: FieldNumber},
			{Name: fieldImageURL, Label: "Image URL", Aliases: []string{"Image"}},
			{Name: fieldDescription, Label: "Description"},
		},
	}
}

func (PrizeStrategy) Resolve(_ *Candidate, _ *Snapshot) {}

func (PrizeStrategy) Validate(c *Candidate, _ *Snapshot) {
	if strings.TrimSpace(c.Field(fieldPrizeName)) == "" {
		c.AddError("prize name is required")
	}

	validateNonNegative(c, fieldAverageValue, "average value")
	validateHTTPURL(c, fieldImageURL, "image URL")
}

func (PrizeStrategy) BusinessKey(c *Candidate) string {
	return strings.ToLower(c.Field(fieldPrizeName)) + "|" + c.Field(fieldCategory)
}

func (PrizeStrategy) PersistedKeys(snap *Snapshot) map[string]struct{} {
	keys := make(map[string]struct{}, len(snap.Prizes))
	for _, prize := range snap.Prizes {
		keys[strings.ToLower(prize.Name)+"|"+strings.ToUpper(prize.Category)] = struct{}{}
	}

	return keys
}

func (PrizeStrategy) DescribeBusinessKey(c *Candidate, _ *Snapshot) string {
	return fmt.Sprintf("prize %q in category %q", c.Field(fieldPrizeName), c.Field(fieldCategory))
}

func (PrizeStrategy) Commit(ctx context.Context, store registry.Store, actor string, c *Candidate) error {
	// An absent average value stays nil; rows that do carry "0" record
	// an explicit zero.
	var averageValue *float64
	if value, ok := c.Value(fieldAverageValue); ok {
		averageValue = &value
	}

	return store.CreatePrize(ctx, registry.Prize{
		ID:           uuid.NewString(),
		Name:         c.Field(fieldPrizeName),
		Category:     c.Field(fieldCategory),
		AverageValue: averageValue,
		ImageURL:     c.Field(fieldImageURL),
		Description:  c.Field(fieldDescription),
		CreatedBy:    actor,
	})
}
