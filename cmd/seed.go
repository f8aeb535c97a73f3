package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vetclinic-backend/clock"
	"vetclinic-backend/database"
	"vetclinic-backend/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the root admin user if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer shutdown(log, db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		created, err := SeedRootUser(db, clock.System(), cfg.RootUserEmail, cfg.RootUserPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("root user created", zap.String("email", cfg.RootUserEmail))
		} else {
			log.Info("root user already present", zap.String("email", cfg.RootUserEmail))
		}
		return nil
	},
}

// SeedRootUser creates the root admin account unless a user with that email
// already exists.
func SeedRootUser(db *gorm.DB, clk clock.Clock, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, errors.New("ROOT_USER_EMAIL and ROOT_USER_PASSWORD must be set")
	}

	var existing models.User
	err := db.Where("email = ?", email).Take(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	now := clk.Now()
	user := models.User{
		Base:      models.Base{CreatedAt: now, UpdatedAt: now},
		FirstName: "Root",
		LastName:  "Admin",
		Email:     email,
		Role:      models.RoleAdmin,
	}
	if err := user.SetPassword(password); err != nil {
		return false, err
	}
	if err := db.Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}
