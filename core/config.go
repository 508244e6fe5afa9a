package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	AppName  string
	Env      string
	Build    string

	SecretKey string

	// TutorName is used in all parent-facing message templates.
	TutorName string

	// TeacherSecret is the shared teacher password; TeacherSecretHash, when set,
	// takes precedence and must be a bcrypt hash (see cmd/admin setsecret).
	TeacherSecret     string
	TeacherSecretHash string

	// aggregation policy knobs
	LeaderboardSize  int
	AbsenceThreshold int
	DefaultExamTotal float64

	Server struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	Database struct {
		// Enable switches the API from the in-memory store to Postgres.
		Enable        bool
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	Gemini struct {
		APIKey  string
		Model   string
		Timeout time.Duration
	}

	RollbarToken string
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Tadrees")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "t6u#@0ppewm$+6f=dz&u0xh7(h!x)#*c9(#yg4h^$cegm3emy")
	v.SetDefault("tutorName", "مستر داود")
	v.SetDefault("teacherSecret", "20+1146801121")
	v.SetDefault("teacherSecretHash", "")
	v.SetDefault("leaderboardSize", 3)
	v.SetDefault("absenceThreshold", 2)
	v.SetDefault("defaultExamTotal", float64(20))

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", "localhost:6060")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("databaseEnable", false)
	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "tadrees")
	v.SetDefault("databaseUser", "")
	v.SetDefault("databasePassword", "")
	v.SetDefault("databaseAdminUser", "")
	v.SetDefault("databaseAdminPassword", "")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseDisableTLS", true)

	v.SetDefault("geminiApiKey", "")
	v.SetDefault("geminiModel", "gemini-3-flash-preview")
	v.SetDefault("geminiTimeout", 20*time.Second)

	v.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:             v.GetBool("debug"),
		TestMode:          v.GetBool("testMode"),
		AppName:           v.GetString("appName"),
		Env:               env,
		Build:             v.GetString("build"),
		SecretKey:         v.GetString("secretKey"),
		TutorName:         v.GetString("tutorName"),
		TeacherSecret:     v.GetString("teacherSecret"),
		TeacherSecretHash: v.GetString("teacherSecretHash"),
		LeaderboardSize:   v.GetInt("leaderboardSize"),
		AbsenceThreshold:  v.GetInt("absenceThreshold"),
		DefaultExamTotal:  v.GetFloat64("defaultExamTotal"),
		RollbarToken:      v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Address = v.GetString("serverAddress")
	conf.Server.DebugHost = v.GetString("serverDebugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("jwtRefreshExpirationDelta")

	conf.Database.Enable = v.GetBool("databaseEnable")
	conf.Database.Engine = v.GetString("databaseEngine")
	conf.Database.Name = v.GetString("databaseName")
	conf.Database.User = v.GetString("databaseUser")
	conf.Database.Password = v.GetString("databasePassword")
	conf.Database.AdminUser = v.GetString("databaseAdminUser")
	conf.Database.AdminPassword = v.GetString("databaseAdminPassword")
	conf.Database.Host = v.GetString("databaseHost")
	conf.Database.Port = v.GetString("databasePort")
	conf.Database.DisableTLS = v.GetBool("databaseDisableTLS")

	conf.Gemini.APIKey = v.GetString("geminiApiKey")
	conf.Gemini.Model = v.GetString("geminiModel")
	conf.Gemini.Timeout = v.GetDuration("geminiTimeout")

	return conf
}

// DatabaseAddress returns the host:port of the configured database server.
func (c *Config) DatabaseAddress() string {
	return fmt.Sprintf("%s:%s", c.Database.Host, c.Database.Port)
}
