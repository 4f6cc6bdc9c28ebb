package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarscan-backend/internal/account"
	googleauth "scholarscan-backend/internal/auth"
	"scholarscan-backend/internal/extract"
	"scholarscan-backend/internal/llm"
	openai "scholarscan-backend/internal/llm/openai"
	"scholarscan-backend/internal/notes"
	"scholarscan-backend/internal/papers"
	"scholarscan-backend/internal/shared/config"
	"scholarscan-backend/internal/shared/server"
	"scholarscan-backend/internal/shared/storage/db"
	"scholarscan-backend/internal/shared/storage/object"
	localstore "scholarscan-backend/internal/shared/storage/object/local"
	s3store "scholarscan-backend/internal/shared/storage/object/s3"
	"scholarscan-backend/internal/users"
)

const defaultOpenAIModel = "gpt-4o-mini"

// App holds the wired dependencies for one process.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	PrimaryStore   object.ObjectStore
	LocalStore     object.ObjectStore
	PapersRepo     papers.Repo
	NotesRepo      notes.Repo
	UsersRepo      users.Repo
	PapersService  *papers.Service
	NotesService   *notes.Service
	AccountService *account.Service
	UsersService   *users.Service
	PapersHandler  *papers.Handler
	NotesHandler   *notes.Handler
	AccountHandler *account.Handler
	UsersHandler   *users.Handler
	GoogleAuth     *googleauth.GoogleService
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	primary, err := buildPrimaryStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		PrimaryStore: primary,
		LocalStore:   localstore.New(cfg.LocalStoreDir),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		PapersHandler:  app.PapersHandler,
		NotesHandler:   app.NotesHandler,
		AccountHandler: app.AccountHandler,
		UsersHandler:   app.UsersHandler,
		GoogleAuth:     app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			sqlDB.Close()
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

// buildPrimaryStore returns the remote object store, or nil when the
// deployment runs on local files only.
func buildPrimaryStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	if cfg.ObjectStoreType != "s3" {
		return nil, nil
	}
	return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var paperRepo papers.Repo
	var noteRepo notes.Repo
	var userRepo users.Repo

	if app.DB != nil {
		paperRepo = &papers.PGRepo{DB: app.DB}
		noteRepo = &notes.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		paperRepo = papers.NewMemoryRepo()
		noteRepo = notes.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" {
		apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		if apiKey != "" {
			model := app.Config.LLMModel
			if model == "" {
				model = defaultOpenAIModel
			}
			openaiClient, err := openai.NewClient(apiKey, model)
			if err != nil {
				return err
			}
			llmClient = openaiClient
		} else {
			log.Printf("bootstrap: OPENAI_API_KEY empty; analysis runs in fallback mode")
		}
	}

	paperSvc := &papers.Service{
		Repo:            paperRepo,
		Primary:         app.PrimaryStore,
		PrimaryProvider: app.Config.ObjectStoreType,
		Local:           app.LocalStore,
		Extractor:       extract.PDFExtractor{},
		LLM:             llmClient,
	}
	noteSvc := notes.NewService(noteRepo, paperSvc)
	userSvc := users.NewService(userRepo)
	accountSvc := account.NewService(paperRepo, noteRepo, paperSvc)

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.PapersRepo = paperRepo
	app.NotesRepo = noteRepo
	app.UsersRepo = userRepo
	app.PapersService = paperSvc
	app.NotesService = noteSvc
	app.AccountService = accountSvc
	app.UsersService = userSvc
	app.PapersHandler = papers.NewHandler(paperSvc, app.Config.MaxUploadBytes)
	app.NotesHandler = notes.NewHandler(noteSvc)
	app.AccountHandler = account.NewHandler(accountSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc

	return nil
}
