package database

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"approvalflow-backend/shared/config"
	"approvalflow-backend/shared/database/models"
	utils "approvalflow-backend/shared/utils/auth"
)

// SeedDatabase seeds the database with initial data
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	rolesCreated, err := seedDefaultRoles()
	if err != nil {
		return err
	}

	unitsCreated, err := seedUnitHierarchy()
	if err != nil {
		return err
	}

	usersCreated, err := seedDemoUsers()
	if err != nil {
		return err
	}

	if rolesCreated > 0 || unitsCreated > 0 || usersCreated > 0 {
		log.Printf("✅ Database seeding completed (%d roles, %d units, %d users created)",
			rolesCreated, unitsCreated, usersCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	if err := createSuperAdminFromConfig(); err != nil {
		return err
	}

	return nil
}

// seedDefaultRoles creates the role labels the workflow core understands
func seedDefaultRoles() (int, error) {
	roles := []models.Role{
		{Name: models.RoleAdmin, Description: "Full administrative access across the organization"},
		{Name: models.RoleMaker, Description: "Creates approval requests; cannot decide them"},
		{Name: models.RoleChecker, Description: "Approves or rejects requests from subordinate units"},
	}

	created := 0
	for _, role := range roles {
		var existing models.Role
		result := DB.Where("name = ?", role.Name).First(&existing)
		if result.Error != nil {
			if err := DB.Create(&role).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

// seedUnitHierarchy creates the demo organizational tree:
//
//	HO001
//	└── CIRCLE_NORTH
//	    ├── RO_NORTH_DELHI
//	    │   └── BR_KAROL_BAGH
//	    └── RO_SOUTH_DELHI
//	        └── BR_SAKET
func seedUnitHierarchy() (int, error) {
	type unitDef struct {
		name       string
		code       string
		unitType   models.UnitType
		parentCode string
	}

	defs := []unitDef{
		{"Head Office", "HO001", models.UnitTypeHeadOffice, ""},
		{"North Circle", "CIRCLE_NORTH", models.UnitTypeCircle, "HO001"},
		{"Regional Office North Delhi", "RO_NORTH_DELHI", models.UnitTypeRegionalOffice, "CIRCLE_NORTH"},
		{"Regional Office South Delhi", "RO_SOUTH_DELHI", models.UnitTypeRegionalOffice, "CIRCLE_NORTH"},
		{"Karol Bagh Branch", "BR_KAROL_BAGH", models.UnitTypeBranch, "RO_NORTH_DELHI"},
		{"Saket Branch", "BR_SAKET", models.UnitTypeBranch, "RO_SOUTH_DELHI"},
	}

	created := 0
	for _, def := range defs {
		var existing models.Unit
		result := DB.Where("code = ?", def.code).First(&existing)
		if result.Error == nil {
			continue
		}

		unit := models.Unit{
			Name:     def.name,
			Code:     def.code,
			UnitType: def.unitType,
		}
		if def.parentCode != "" {
			var parent models.Unit
			if err := DB.Where("code = ?", def.parentCode).First(&parent).Error; err != nil {
				return created, fmt.Errorf("parent unit %s not seeded yet: %w", def.parentCode, err)
			}
			unit.ParentID = &parent.ID
		}

		if err := DB.Create(&unit).Error; err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// seedDemoUsers creates a maker at branch level and checkers up the chain
func seedDemoUsers() (int, error) {
	type userDef struct {
		employeeID  string
		email       string
		firstName   string
		lastName    string
		designation string
		unitCode    string
		roles       []models.RoleName
	}

	defs := []userDef{
		{"EMP1001", "maker.kb@approvalflow.com", "Meera", "Kapoor", "Branch Officer", "BR_KAROL_BAGH", []models.RoleName{models.RoleMaker}},
		{"EMP2001", "checker.rnd@approvalflow.com", "Rohan", "Gupta", "Regional Manager", "RO_NORTH_DELHI", []models.RoleName{models.RoleChecker}},
		{"EMP3001", "checker.circle@approvalflow.com", "Anita", "Sharma", "Circle Head", "CIRCLE_NORTH", []models.RoleName{models.RoleChecker, models.RoleMaker}},
	}

	created := 0
	for _, def := range defs {
		var existing models.User
		result := DB.Where("employee_id = ?", def.employeeID).First(&existing)
		if result.Error == nil {
			continue
		}

		var unit models.Unit
		if err := DB.Where("code = ?", def.unitCode).First(&unit).Error; err != nil {
			return created, fmt.Errorf("unit %s not seeded yet: %w", def.unitCode, err)
		}

		hashedPassword, err := utils.HashPassword("changeme123")
		if err != nil {
			return created, err
		}

		user := models.User{
			EmployeeID:  def.employeeID,
			Email:       def.email,
			Password:    hashedPassword,
			FirstName:   def.firstName,
			LastName:    def.lastName,
			Designation: def.designation,
			Status:      models.UserStatusActive,
			UnitID:      &unit.ID,
		}
		if err := DB.Create(&user).Error; err != nil {
			return created, err
		}

		var roles []models.Role
		if err := DB.Where("name IN ?", def.roles).Find(&roles).Error; err != nil {
			return created, err
		}
		if err := DB.Model(&user).Association("Roles").Append(&roles); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// createSuperAdminFromConfig creates the ADMIN user at head office
func createSuperAdminFromConfig() error {
	cfg := config.GetConfig()

	var existing models.User
	result := DB.Where("email = ?", cfg.SuperAdminEmail).First(&existing)
	if result.Error == nil {
		return nil
	}

	var ho models.Unit
	var hoID *uuid.UUID
	if err := DB.Where("code = ?", "HO001").First(&ho).Error; err == nil {
		hoID = &ho.ID
	}

	hashedPassword, err := utils.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		EmployeeID:  "EMP0001",
		Email:       cfg.SuperAdminEmail,
		Password:    hashedPassword,
		FirstName:   "Super",
		LastName:    "Admin",
		Designation: "System Administrator",
		Status:      models.UserStatusActive,
		UnitID:      hoID,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	var adminRole models.Role
	if err := DB.Where("name = ?", models.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}
	if err := DB.Model(&admin).Association("Roles").Append(&adminRole); err != nil {
		return err
	}

	log.Printf("✅ Super admin created: %s", cfg.SuperAdminEmail)
	return nil
}
