package models

import "gorm.io/gorm"

// Initialize default plans in your database migration
func CreateDefaultPlans(db *gorm.DB) error {
	defaultPlans := []SubscriptionPlan{
		{
			Name:         "basic",
			Description:  "Basic monthly plan covering all basic-tier videos",
			Tier:         TierBasic,
			DurationDays: 30,
			PriceCents:   499,
		},
		{
			Name:         "premium",
			Description:  "Premium monthly plan covering basic and premium videos",
			Tier:         TierPremium,
			DurationDays: 30,
			PriceCents:   999,
			IsPopular:    true,
		},
		{
			Name:         "vip",
			Description:  "VIP yearly plan covering the full catalog",
			Tier:         TierVIP,
			DurationDays: 365,
			PriceCents:   7999,
		},
	}

	for _, plan := range defaultPlans {
		var existing SubscriptionPlan
		err := db.Where("name = ?", plan.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&plan).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateDefaultCategories seeds the initial catalog categories.
func CreateDefaultCategories(db *gorm.DB) error {
	defaults := []VideoCategory{
		{Name: "General", Description: "Uncategorized videos"},
	}

	for _, category := range defaults {
		var existing VideoCategory
		err := db.Where("name = ?", category.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}
