package database

import (
	"fmt"
	"log"
	"os"

	"learning-platform/internal/domain/billing"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/oplog"
	"learning-platform/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	// TranslateError lets handlers detect gorm.ErrDuplicatedKey from the
	// unique (user_id, course_id) registration index.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		&users.User{},
		&billing.Payment{},
		&courses.LiveCourse{},
		&courses.Registration{},
		&oplog.ErrorLog{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}
