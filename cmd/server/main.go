package main

import (
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/tgportal/tgportal/auth"
	"github.com/tgportal/tgportal/collector"
	"github.com/tgportal/tgportal/model"
	"github.com/tgportal/tgportal/server"
	"github.com/tgportal/tgportal/store"
	"github.com/tgportal/tgportal/utils"
	"github.com/tgportal/tgportal/utils/dotenv"
	Logger "github.com/tgportal/tgportal/utils/log"
)

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	Logger.InitLogger("api_server")

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatal("cannot connect to DB: ", err)
	}
	utils.DatabaseSetupAndMigration(db)

	gormStore := store.New(db)
	seedAdmin(gormStore)

	limiter := auth.NewLimiter(rateLimitStore(), auth.LoginMaxAttempts)
	sessions := auth.NewSessionService(gormStore)
	verifier := auth.NewVerifier(gormStore)
	authService := auth.NewService(gormStore, verifier, sessions, limiter, gormStore)

	pipeline := collector.NewPipeline(gormStore)
	feed := collector.NewTelegramClient(os.Getenv("TELEGRAM_BOT_TOKEN"))

	// Default with the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())

	srv := server.NewServer(gormStore, authService, sessions, pipeline, feed)
	srv.RegisterRoutes(router)

	Logger.Log.Info("api server starts up")
	router.Run(":8080")
}

// rateLimitStore picks the shared Redis counter when REDIS_HOST is set so
// multiple server processes throttle together; otherwise the process-local
// store is enough.
func rateLimitStore() auth.RateLimitStore {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return auth.NewMemoryRateLimitStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	return auth.NewRedisRateLimitStore(client)
}

// seedAdmin bootstraps the first admin account from env when none with that
// email exists yet.
func seedAdmin(gormStore *store.GormStore) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	existing, err := gormStore.AdminByEmail(email)
	if err != nil {
		Logger.Log.Fatal("cannot look up admin: ", err)
	}
	if existing != nil {
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		Logger.Log.Fatal("cannot hash bootstrap admin password: ", err)
	}
	admin := &model.Admin{
		Email:        email,
		HashScheme:   model.HashSchemeBcrypt,
		PasswordHash: hash,
	}
	if err := gormStore.CreateAdmin(admin); err != nil {
		Logger.Log.Fatal("cannot create bootstrap admin: ", err)
	}
	Logger.Log.Info("bootstrap admin created: ", email)
}
