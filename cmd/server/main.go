package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/diewo77/go-blog/auth"
	"github.com/diewo77/go-blog/internal/config"
	"github.com/diewo77/go-blog/internal/db"
	"github.com/diewo77/go-blog/internal/mail"
	"github.com/diewo77/go-blog/internal/server"
	"github.com/diewo77/go-blog/internal/services"
	"github.com/diewo77/go-blog/internal/storage"
	"github.com/diewo77/go-blog/internal/token"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if migrateOnlyFlag != nil && *migrateOnlyFlag {
		log.Println("migrations completed; exiting as requested")
		return
	}
	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)

	sessions := auth.New(cfg.SecretKey)
	tokens := token.NewService(cfg.SecretKey)
	mailer := mail.NewSMTPMailer(cfg.MailServer, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailSender)
	usersSvc := services.NewUsers(dbConn, tokens, mailer, cfg.BaseURL)
	postsSvc := services.NewPosts(dbConn)
	pictures := storage.NewDiskStore(cfg.PicturesDir)

	appHandler := server.New(server.Deps{
		DB:       dbConn,
		Sessions: sessions,
		Users:    usersSvc,
		Posts:    postsSvc,
		Pictures: pictures,
	})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: appHandler}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
