package mock

import (
	"context"
	"time"

	"mykitchen/internal/db"
	applog "mykitchen/internal/log"
	"mykitchen/internal/shopping"
	"mykitchen/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	AdminEmail    = "admin@mykitchen.local"
	DemoEmail     = "demo@mykitchen.local"
	DemoPassword  = "kitchen-demo"
	AdminPassword = "kitchen-admin"
)

// Empty returns a migrated, unseeded in-memory sqlite database. Every call
// gets its own database.
func Empty(ctx context.Context) (*gorm.DB, error) {
	dsn := "file:mykitchen-" + uuid.NewString() + "?mode=memory&cache=shared"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction:                   true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database migrated")
	return database, nil
}

// New returns an in-memory sqlite database seeded with demo kitchen data.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := Empty(ctx)
	if err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seedUser(ctx context.Context, database *gorm.DB, email, name, password, role string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := database.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	if _, err := seedUser(ctx, database, AdminEmail, "Kitchen Admin", AdminPassword, models.RoleAdmin); err != nil {
		return err
	}
	demo, err := seedUser(ctx, database, DemoEmail, "Dana Demo", DemoPassword, models.RoleUser)
	if err != nil {
		return err
	}

	recipes := []models.Recipe{
		{
			Title:        "Classic Pancakes",
			Description:  "Fluffy weekend pancakes.",
			Instructions: "Whisk the dry ingredients, add milk and eggs, rest 10 minutes, fry.",
			Servings:     4,
			PrepMinutes:  10,
			CookMinutes:  15,
			Tags:         datatypes.JSONSlice[string]{"breakfast", "sweet"},
			OwnerID:      demo.ID,
			Ingredients: []models.Ingredient{
				{Position: 0, Name: "Flour", Amount: 200, Unit: "g"},
				{Position: 1, Name: "Milk", Amount: 300, Unit: "ml"},
				{Position: 2, Name: "Eggs", Amount: 2, Unit: "pcs"},
				{Position: 3, Name: "Sugar", Amount: 30, Unit: "g"},
			},
		},
		{
			Title:        "Sponge Cake",
			Description:  "A light sponge for layering.",
			Instructions: "Beat eggs with sugar until pale, fold in flour, bake at 180C for 25 minutes.",
			Servings:     8,
			PrepMinutes:  20,
			CookMinutes:  25,
			Tags:         datatypes.JSONSlice[string]{"baking", "sweet"},
			OwnerID:      demo.ID,
			Ingredients: []models.Ingredient{
				{Position: 0, Name: "flour", Amount: 150, Unit: "G"},
				{Position: 1, Name: "Sugar", Amount: 150, Unit: "g"},
				{Position: 2, Name: "Eggs", Amount: 4, Unit: "pcs"},
			},
		},
		{
			Title:        "Tomato Soup",
			Description:  "Simple roasted tomato soup.",
			Instructions: "Roast tomatoes and onion, blend with stock, season.",
			Servings:     4,
			PrepMinutes:  15,
			CookMinutes:  40,
			Tags:         datatypes.JSONSlice[string]{"soup", "vegetarian"},
			OwnerID:      demo.ID,
			Ingredients: []models.Ingredient{
				{Position: 0, Name: "Tomato", Amount: 1, Unit: "kg"},
				{Position: 1, Name: "Onion", Amount: 1, Unit: "pcs"},
				{Position: 2, Name: "Vegetable Stock", Amount: 500, Unit: "ml"},
			},
		},
	}

	for i := range recipes {
		if err := database.WithContext(ctx).Create(&recipes[i]).Error; err != nil {
			return err
		}
	}

	list := shopping.Assemble(demo.ID, "Weekend baking", recipes[:2], time.Now().UTC())
	if err := database.WithContext(ctx).Create(&list).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded", "recipes", len(recipes), "list_items", len(list.Items))
	return nil
}
