package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-registration/internal/auth"
	"ms-registration/internal/config"
	"ms-registration/internal/database/migrations"
	"ms-registration/internal/enrollments"
	enrollment_db "ms-registration/internal/enrollments/db"
	"ms-registration/internal/enrollments/enrollment_api"
	"ms-registration/internal/enrollments/pass"
	"ms-registration/internal/events"
	event_db "ms-registration/internal/events/db"
	"ms-registration/internal/events/event_api"
	"ms-registration/internal/kafka"
	"ms-registration/internal/logger"
	"ms-registration/internal/users"
	user_db "ms-registration/internal/users/db"
	"ms-registration/internal/users/user_api"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.LogDatabase("CONNECT", "postgresql", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.LogDatabase("SUCCESS", "postgresql", "PostgreSQL connection established")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	rollback := flag.Bool("rollback", false, "roll back the most recent database migration and exit")
	flag.Parse()

	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Registration Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: cfg.Migrations.Dir,
		AutoMigrate:   cfg.Migrations.AutoMigrate,
	})
	if *rollback {
		if err := runner.Rollback(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Rollback failed: %v", err))
		}
		log.LogDatabase("MIGRATE", "postgresql", "Rolled back the most recent migration")
		return
	}
	if cfg.Migrations.AutoMigrate {
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.LogDatabase("MIGRATE", "postgresql", "Migrations applied")
	}

	var identityCache *auth.IdentityCache
	if cfg.Redis.Enabled {
		cache, err := auth.InitializeIdentityCache(cfg.Redis.Addr, cfg.Redis.IdentityTTL)
		if err != nil {
			log.Warn("AUTH", fmt.Sprintf("Redis unavailable, identity caching disabled: %v", err))
		} else {
			identityCache = cache
			defer identityCache.Client.Close()
			log.Info("AUTH", fmt.Sprintf("Identity cache connected to %s", cfg.Redis.Addr))
		}
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, cfg.Kafka.MockMode)
		defer producer.Close()

		if !cfg.Kafka.MockMode {
			requiredTopics := []string{
				cfg.Kafka.Topics.EventCreated,
				cfg.Kafka.Topics.EnrollmentCreated,
				cfg.Kafka.Topics.EnrollmentCancelled,
			}
			if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
				log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
			} else {
				log.Info("KAFKA", "Required topics ensured successfully")
			}
		}
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	passGenerator := pass.NewGenerator(os.Getenv("PASS_SECRET_KEY"))

	userDB := &user_db.DB{Bun: bunDB}
	eventDB := &event_db.DB{Bun: bunDB}
	enrollmentDB := &enrollment_db.DB{Bun: bunDB}

	userService := users.NewUserService(userDB, issuer)
	eventService := events.NewEventService(eventDB, publisherOrNil(producer))
	enrollmentService := enrollments.NewEnrollmentService(enrollmentDB, enrollmentPublisherOrNil(producer))

	userHandler := user_api.NewHandler(userService, log)
	eventHandler := event_api.NewHandler(eventService, log)
	enrollmentHandler := enrollment_api.NewHandler(enrollmentService, passGenerator, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(requestLogger(log))

	// --- Public Routes ---
	r.Post("/signup", userHandler.Signup)
	r.Post("/token", userHandler.Login)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(issuer, userDB, identityCache, log))

		r.Route("/api", func(r chi.Router) {
			r.Route("/events", func(r chi.Router) {
				r.Get("/", eventHandler.ListEvents)
				r.Post("/", eventHandler.CreateEvent)
				r.Get("/{eventID}", eventHandler.GetEvent)
				r.Put("/{eventID}", eventHandler.UpdateEvent)
				r.Post("/{eventID}/enroll", enrollmentHandler.Enroll)
				r.Delete("/{eventID}/enroll", enrollmentHandler.Unenroll)
			})
			log.Info("ROUTER", "Event routes registered under /api/events")

			r.Route("/enrollments", func(r chi.Router) {
				r.Get("/", enrollmentHandler.ListOwn)
				r.Get("/{enrollmentID}/pass", enrollmentHandler.GetPass)
			})
			log.Info("ROUTER", "Enrollment routes registered under /api/enrollments")

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.ListUsers)
				r.Delete("/{userID}", userHandler.DeleteOrganizer)
			})
			log.Info("ROUTER", "User routes registered under /api/users")
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Registration Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Registration Service shutdown complete")
	}
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.LogAPI(r.Method, r.URL.Path, strconv.Itoa(ww.Status()), time.Since(start).String())
		})
	}
}

// A nil *kafka.Producer inside a non-nil interface would dodge the services'
// nil checks, so conversion happens here.
func publisherOrNil(p *kafka.Producer) events.Publisher {
	if p == nil {
		return nil
	}
	return p
}

func enrollmentPublisherOrNil(p *kafka.Producer) enrollments.Publisher {
	if p == nil {
		return nil
	}
	return p
}
