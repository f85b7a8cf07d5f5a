package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"researcher-agent-go/config"
	"researcher-agent-go/internal/cache"
	"researcher-agent-go/internal/enhancer"
	"researcher-agent-go/internal/fetcher"
	"researcher-agent-go/internal/handler"
	"researcher-agent-go/internal/service"
	"researcher-agent-go/internal/session"
)

func main() {
	// 加载 .env 文件（如果存在）
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not configured, AI enhancement requires a per-session key")
	}

	// 创建缓存（优先使用PostgreSQL，否则使用内存缓存）
	var profileCache cache.Cache
	if cfg.DatabaseURL != "" {
		pgCache, err := cache.NewPostgresCache(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to PostgreSQL, using memory cache: %v", err)
			profileCache = cache.NewMemoryCache()
		} else {
			log.Println("Using PostgreSQL cache")
			profileCache = pgCache
		}
	} else {
		log.Println("DATABASE_URL not configured, using memory cache")
		profileCache = cache.NewMemoryCache()
	}

	// 站点fetcher，顺序即合并优先级（CSV始终在最前）
	httpClient := fetcher.NewHTTPClient(cfg.HTTPTimeout)
	fetchers := []fetcher.SiteFetcher{
		fetcher.NewPubMedFetcher(httpClient),
		fetcher.NewResearchGateFetcher(httpClient),
		fetcher.NewGoogleScholarFetcher(httpClient),
		fetcher.NewClinicalTrialsFetcher(httpClient),
	}

	researcherService := service.NewResearcherService(
		fetchers,
		enhancer.NewClient(),
		profileCache,
		cfg.OpenAIKey,
		cfg.CacheTTL,
		httpClient,
	)

	sessions := session.NewStore()
	researcherHandler := handler.NewResearcherHandler(researcherService, sessions)

	// 设置路由
	mux := http.NewServeMux()
	mux.HandleFunc("/health", researcherHandler.Health)
	mux.HandleFunc("/api/upload-csv", researcherHandler.UploadCSV)
	mux.HandleFunc("/api/search-researcher", researcherHandler.Search)
	mux.HandleFunc("/api/search-with-websites", researcherHandler.SearchWithWebsites)
	mux.HandleFunc("/api/ask-question", researcherHandler.AskQuestion)
	mux.HandleFunc("/api/set-api-key", researcherHandler.SetAPIKey)
	mux.HandleFunc("/api/generate-report", researcherHandler.GenerateReport)

	// CORS中间件
	corsHandler := corsMiddleware(mux)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, corsHandler); err != nil {
		log.Fatal(err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
