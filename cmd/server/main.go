package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/audit"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/config"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/database"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/handler"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/middleware"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/queue"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/router"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

func main() {
	// .env is optional; in containers the environment is already set.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the OTP ledger and the rate limiter. A nil client means
	// OTP flows fail and rate limiting is off; the rest of the API works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, OTP flows will be rejected")
	}

	recorder := audit.NewRecorder()
	go func() {
		if err := queue.StartActionConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	otps := repository.NewOTPRepo(rdb)
	journals := repository.NewJournalRepo(db)
	volumes := repository.NewVolumeRepo(db)
	issues := repository.NewIssueRepo(db)
	articles := repository.NewArticleRepo(db)
	inPress := repository.NewInPressRepo(db)
	editors := repository.NewEditorRepo(db)
	submissions := repository.NewSubmissionRepo(db)

	notifier := service.NewSMSNotifier(cfg.SMSGatewayURL, cfg.SMSAPIKey, cfg.SMSSenderID, cfg.SMSTemplateID)

	identity := service.NewIdentity(users, otps, notifier, recorder,
		cfg.JWTSecret, cfg.SessionTTLDays, cfg.BcryptCost, cfg.OTPTTLMinutes)
	accounts := service.NewAccounts(users, recorder, cfg.BcryptCost)
	content := service.NewContent(journals, volumes, issues, articles, inPress, editors, recorder)
	editorSvc := service.NewEditors(editors, recorder)
	submissionSvc := service.NewSubmissions(submissions, journals, recorder)
	dashboard := service.NewDashboard(journals, volumes, issues, articles, editors, submissions)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	session := middleware.SessionAuth(identity)
	otpLimit := middleware.OTPRateLimit(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(identity), session, otpLimit)
	router.RegisterPublic(e,
		handler.NewJournalHandler(content),
		handler.NewVolumeHandler(content),
		handler.NewIssueHandler(content),
		handler.NewArticleHandler(content),
		handler.NewInPressHandler(content),
		handler.NewEditorHandler(editorSvc),
		handler.NewSubmissionHandler(submissionSvc))
	router.RegisterAdmin(e, session,
		handler.NewUserHandler(accounts),
		handler.NewJournalHandler(content),
		handler.NewVolumeHandler(content),
		handler.NewIssueHandler(content),
		handler.NewArticleHandler(content),
		handler.NewInPressHandler(content),
		handler.NewEditorHandler(editorSvc),
		handler.NewSubmissionHandler(submissionSvc),
		handler.NewDashboardHandler(dashboard))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
