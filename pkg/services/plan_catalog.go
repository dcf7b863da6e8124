package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// PlanCatalog holds the subscription tiers. The built-in catalog can be
// overridden by a YAML file listing plans under a top-level "plans" key.
type PlanCatalog struct {
	plans map[string]models.Plan
}

// NewPlanCatalog returns the built-in catalog.
func NewPlanCatalog() *PlanCatalog {
	return &PlanCatalog{plans: models.DefaultPlans()}
}

// LoadPlanCatalog reads a catalog override from a YAML file. Plans present
// in the file replace the built-in entry of the same name.
func LoadPlanCatalog(path string) (*PlanCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}

	var doc struct {
		Plans []models.Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plans file: %w", err)
	}

	catalog := NewPlanCatalog()
	for _, p := range doc.Plans {
		if p.Name == "" {
			return nil, fmt.Errorf("plan entry without a name")
		}
		catalog.plans[p.Name] = p
	}

	return catalog, nil
}

// Get returns the plan by name, falling back to free for unknown names.
func (c *PlanCatalog) Get(name string) models.Plan {
	if p, ok := c.plans[name]; ok {
		return p
	}
	return c.plans[models.PlanFree]
}

// Has reports whether the catalog contains the named plan.
func (c *PlanCatalog) Has(name string) bool {
	_, ok := c.plans[name]
	return ok
}

// All returns every plan in the catalog.
func (c *PlanCatalog) All() []models.Plan {
	out := make([]models.Plan, 0, len(c.plans))
	for _, name := range []string{models.PlanFree, models.PlanStarter, models.PlanPro, models.PlanEnterprise} {
		if p, ok := c.plans[name]; ok {
			out = append(out, p)
		}
	}
	// Include any custom plans from an override file.
	for name, p := range c.plans {
		switch name {
		case models.PlanFree, models.PlanStarter, models.PlanPro, models.PlanEnterprise:
		default:
			out = append(out, p)
		}
	}
	return out
}
