package config

import (
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPAddr   string `env:"HTTP_ADDR" env-default:":8080"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	DBDriver   string `env:"DB_DRIVER" env-default:"sqlite"`
	DBDSN      string `env:"DB_DSN"`
	AuthSecret string `env:"AUTH_HMAC_SECRET" env-default:"supersecret-dev-key"`

	// AcademicYear like "2025-2026"; derived from the clock when empty.
	AcademicYear string `env:"ACADEMIC_YEAR"`

	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"http://localhost:3000"`

	Exam Exam
}

type Exam struct {
	DefaultDurationMin int `env:"EXAM_DURATION_MIN" env-default:"180"`
	// MaxInvigilatorDuties caps how many rooms one teacher covers per day.
	MaxInvigilatorDuties int `env:"EXAM_MAX_DUTIES" env-default:"2"`
	// MaxSubjectsPerTeacher caps the subject allocator's workload.
	MaxSubjectsPerTeacher int `env:"MAX_SUBJECTS_PER_TEACHER" env-default:"5"`
}

var (
	once     sync.Once
	instance *Config
)

// GetConfig reads configuration from the environment once per process.
func GetConfig() (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}
		err = cleanenv.ReadEnv(instance)
	})
	return instance, err
}
