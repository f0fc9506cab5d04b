package db

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/rajivgeraev/baterx-api/internal/config"
)

// RunMigrations применяет миграции схемы из каталога migrations
func RunMigrations(cfg *config.Config, migrationsPath string) error {
	// golang-migrate работает через database/sql, поэтому открываем
	// отдельное соединение поверх lib/pq
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("ошибка при открытии соединения для миграций: %w", err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("ошибка при создании драйвера миграций: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("ошибка при инициализации миграций: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("ошибка при применении миграций: %w", err)
	}

	if err == migrate.ErrNoChange {
		log.Println("Миграции не требуются, схема актуальна")
	} else {
		version, dirty, verr := m.Version()
		if verr != nil {
			return fmt.Errorf("ошибка при получении версии миграций: %w", verr)
		}
		log.Printf("✅ Миграции применены: версия %d, dirty=%v", version, dirty)
	}

	return nil
}
