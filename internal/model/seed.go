package model

import (
	"context"
	"errors"
	"skillchain/internal/entity"
	"skillchain/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type categorySeed struct {
	Name        string
	Description string
	Icon        string
}

var defaultCategories = []categorySeed{
	{"Compliance & Standards", "Guides on labour, safety and environmental compliance standards for garment factories", "📋"},
	{"Sustainability", "Reducing environmental impact across materials, energy, water and waste", "🌱"},
	{"Supply Chain", "Traceability, supplier management and transparency in the apparel supply chain", "🔗"},
	{"Worker Welfare", "Health, safety, fair wages and wellbeing of factory workers", "👷"},
	{"Technology & Innovation", "Digital tools such as product passports, automation and data-driven compliance", "💡"},
	{"Quality Management", "Quality control, inspections and continuous improvement practices", "✅"},
	{"Best Practices", "Practical lessons and case studies from leading factories", "⭐"},
	{"Regulations & Policy", "Updates on EU, national and buyer regulations affecting garment exports", "📜"},
}

// SeedDefaultCategories creates the built-in content categories that do not exist yet.
// It returns the number of categories created.
func SeedDefaultCategories(ctx context.Context, repo Repository) (int, error) {
	if repo == nil {
		return 0, nil
	}

	created := 0
	for i, seed := range defaultCategories {
		slug := utils.Slugify(seed.Name)
		_, err := repo.GetCategoryBySlug(ctx, slug)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return created, err
		}

		category := entity.DbCategory{
			Name:        seed.Name,
			Slug:        slug,
			Description: seed.Description,
			Icon:        seed.Icon,
			Order:       i,
		}
		if err := repo.CreateCategory(ctx, &category); err != nil {
			return created, err
		}
		created++
	}

	if created > 0 {
		logrus.WithField("created", created).Info("seeded content categories")
	}
	return created, nil
}
