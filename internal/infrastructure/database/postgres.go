package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sangkips/tablebill-api/internal/config"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
	"github.com/sangkips/tablebill-api/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *slog.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("connected to PostgreSQL", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// partialIndexes back the "at most one open" rules that AutoMigrate cannot express
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_open_table ON orders (table_ref) WHERE status = 0`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_open_cashier ON shifts (cashier_id) WHERE status = 'open'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_open_terminal ON shifts (terminal_id) WHERE status = 'open'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_invoice ON payments (invoice_id)`,
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *slog.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Staff and RBAC, owned by the staff service in production
		&entity.Permission{},
		&entity.Role{},
		&entity.Staff{},

		// Menu catalog projection
		&entity.Dish{},

		// Billing
		&entity.Order{},
		&entity.OrderItem{},
		&entity.Invoice{},
		&entity.VoidRequest{},
		&entity.Shift{},
		&entity.Payment{},

		// System entities
		&entity.Setting{},
		&entity.AuditLog{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Info("database migrations completed")
	return nil
}

// RoleGrant names a role and the permissions it carries
type RoleGrant struct {
	Role        string
	Permissions []string
}

// SeedDefaultData creates permissions, roles and, when configured, the
// first manager account. Existing rows are left untouched.
func SeedDefaultData(db *gorm.DB, grants []RoleGrant, admin config.AdminConfig, adminRole string, log *slog.Logger) error {
	log.Info("seeding default data")

	byName := make(map[string]entity.Permission)
	for _, g := range grants {
		for _, name := range g.Permissions {
			if _, ok := byName[name]; ok {
				continue
			}
			p := entity.Permission{Name: name}
			if err := db.Where("name = ?", name).FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", name, err)
			}
			byName[name] = p
		}
	}

	for _, g := range grants {
		var role entity.Role
		if err := db.Where("name = ?", g.Role).First(&role).Error; err == nil {
			continue
		}
		role = entity.Role{Name: g.Role}
		for _, name := range g.Permissions {
			role.Permissions = append(role.Permissions, byName[name])
		}
		if err := db.Create(&role).Error; err != nil {
			log.Warn("failed to create role", "role", g.Role, "error", err)
		}
	}

	if admin.Username == "" || admin.PIN == "" {
		log.Info("default data seeding completed")
		return nil
	}

	var existing entity.Staff
	if err := db.Where("username = ?", admin.Username).First(&existing).Error; err == nil {
		log.Info("admin account already exists", "username", admin.Username)
		return nil
	}

	hash, err := utils.HashSecret(admin.PIN)
	if err != nil {
		return fmt.Errorf("failed to hash admin PIN: %w", err)
	}

	var role entity.Role
	if err := db.Where("name = ?", adminRole).First(&role).Error; err != nil {
		return fmt.Errorf("failed to load %s role: %w", adminRole, err)
	}

	name := admin.Name
	if name == "" {
		name = "Manager"
	}
	staff := entity.Staff{
		Name:     name,
		Username: admin.Username,
		PinHash:  hash,
		Active:   true,
		Roles:    []entity.Role{role},
	}
	if err := db.Create(&staff).Error; err != nil {
		log.Warn("failed to create admin account", "username", admin.Username, "error", err)
	} else {
		log.Info("admin account created", "username", admin.Username)
	}

	log.Info("default data seeding completed")
	return nil
}
