// Command seed loads a minimal development dataset: one admin, one teacher,
// one student, a class and the student's enrollment. Running it twice is
// safe; existing rows are left alone.
package main

import (
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Vasugoli/classTrack/internal/config"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/pkg"
)

const devPassword = "changeme123"

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to seed a production database")
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	if err := seedAll(db); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("seed complete; all dev accounts use password %q", devPassword)
}

func seedAll(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(devPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	enrollmentNo := "STU-0001"
	users := []models.User{
		{ID: uuid.NewString(), Name: "Dev Admin", Email: "admin@classtrack.dev", Role: models.RoleAdmin, Password: string(hash)},
		{ID: uuid.NewString(), Name: "Dev Teacher", Email: "teacher@classtrack.dev", Role: models.RoleTeacher, Password: string(hash)},
		{ID: uuid.NewString(), Name: "Dev Student", Email: "student@classtrack.dev", Role: models.RoleStudent, Password: string(hash), EnrollmentNo: &enrollmentNo},
	}
	for i := range users {
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&users[i]).Error; err != nil {
			return err
		}
	}

	var teacher models.User
	if err := db.Where("email = ?", "teacher@classtrack.dev").First(&teacher).Error; err != nil {
		return err
	}
	var student models.User
	if err := db.Where("email = ?", "student@classtrack.dev").First(&student).Error; err != nil {
		return err
	}

	room := "B-204"
	class := models.Class{
		ID:        uuid.NewString(),
		Name:      "Introduction to Computer Science",
		Code:      "CS101",
		Room:      &room,
		TeacherID: teacher.ID,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&class).Error; err != nil {
		return err
	}
	if err := db.Where("code = ?", "CS101").First(&class).Error; err != nil {
		return err
	}

	schedule := models.Schedule{
		UserID:    student.ID,
		ClassID:   class.ID,
		DayOfWeek: 1,
		StartTime: "09:00",
		EndTime:   "10:30",
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "class_id"}},
		DoNothing: true,
	}).Create(&schedule).Error
}
