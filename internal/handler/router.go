package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/newsdesk/internal/metrics"
	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// HealthChecker はヘルスチェックが依存するDB疎通確認のインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	SessionFinder     middleware.SessionFinder
	RoleFinder        middleware.RoleFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// 運用エンドポイント
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// コンテンツ（ニュースレター/ブログは同一ハンドラーをサービス差し替えで共有）
	NewsletterService ArticleServiceInterface
	BlogPostService   ArticleServiceInterface
	TierFinder        TierFinder

	// AI生成・取り込み
	AIService         AIServiceInterface
	UploadService     UploadServiceInterface
	FeedImportService FeedImportServiceInterface

	// リポジトリ直結のリソース
	Products      repository.AIProductRepository
	Presentations repository.PresentationRepository
	BioPages      repository.BioPageRepository
	Testimonials  repository.TestimonialRepository
	Subscriptions repository.NewsletterSubscriptionRepository
	History       repository.ReadingHistoryRepository
	Users         repository.UserRepository
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Session → CSRF
//
// Sessionミドルウェアは任意認証であり、匿名リクエストもそのまま通す。
// 認証必須ルートはRequireUser、管理ルートはさらにAdminを重ねる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	newsletterHandler := NewArticleHandler(deps.NewsletterService, deps.TierFinder, deps.RoleFinder)
	blogHandler := NewArticleHandler(deps.BlogPostService, deps.TierFinder, deps.RoleFinder)
	generateHandler := NewGenerateHandler(deps.AIService, deps.NewsletterService, deps.UploadService, deps.FeedImportService)
	productHandler := NewProductHandler(deps.Products)
	presentationHandler := NewPresentationHandler(deps.Presentations)
	bioHandler := NewBioPageHandler(deps.BioPages)
	testimonialHandler := NewTestimonialHandler(deps.Testimonials)
	subHandler := NewSubscriptionHandler(deps.Subscriptions, deps.History)
	userHandler := NewUserHandler(deps.Users)
	dashboardHandler := NewDashboardHandler(deps.NewsletterService, deps.Products, deps.Users, deps.History)

	// --- 運用エンドポイント ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証ルート（OAuthフロー） ---

	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 公開ルート（匿名閲覧可） ---

	r.Route("/api/newsletters", func(r chi.Router) {
		r.Get("/", newsletterHandler.List)
		r.Get("/{slug}", newsletterHandler.Get)
	})

	r.Route("/api/blog-posts", func(r chi.Router) {
		r.Get("/", blogHandler.List)
		r.Get("/{slug}", blogHandler.Get)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Get("/featured", productHandler.ListFeatured)
		r.Get("/{slug}", productHandler.Get)
	})

	r.Route("/api/presentations", func(r chi.Router) {
		r.Get("/", presentationHandler.List)
		r.Get("/{slug}", presentationHandler.Get)
	})

	r.Route("/api/bio", func(r chi.Router) {
		r.Get("/", bioHandler.List)
		r.Get("/{slug}", bioHandler.Get)
	})

	r.Get("/api/testimonials", testimonialHandler.List)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: RequireUser → RateLimit(General)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequireUserMiddleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/api/newsletters/{id}/subscribe", subHandler.Subscribe)
		r.Delete("/api/newsletters/{id}/subscribe", subHandler.Unsubscribe)
		r.Get("/api/subscriptions", subHandler.ListSubscriptions)

		r.Post("/api/reading-history", subHandler.AddReadingHistory)
		r.Get("/api/reading-history", subHandler.ListReadingHistory)
		r.Get("/api/reading-history/usage", subHandler.MonthlyUsage)
	})

	// --- 管理ルート ---
	// ミドルウェアスタック: RequireUser → Admin → RateLimit(General)
	// ただしnewsletters/blog-postsのコレクションGETのみ匿名でも呼び出せる。
	// その場合ハンドラーが公開済みの記事に自動で絞り込む。

	adminGate := []func(http.Handler) http.Handler{
		middleware.NewRequireUserMiddleware(),
		middleware.NewAdminMiddleware(deps.RoleFinder),
		deps.RateLimiter.GeneralMiddleware(),
	}

	r.Route("/api/admin", func(r chi.Router) {
		r.Route("/newsletters", func(r chi.Router) {
			r.Get("/", newsletterHandler.AdminList)

			r.Group(func(r chi.Router) {
				r.Use(adminGate...)
				r.Post("/", newsletterHandler.Create)

				// AI生成はコスト保護のため専用レート制限を追加
				r.With(deps.RateLimiter.AIGenerationMiddleware()).Post("/ai-generate", generateHandler.GenerateNewsletter)
				r.With(deps.RateLimiter.AIGenerationMiddleware()).Post("/enhance-prompt", generateHandler.EnhancePrompt)
				r.Post("/upload", generateHandler.Upload)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", newsletterHandler.AdminGet)
					r.Put("/", newsletterHandler.Update)
					r.Delete("/", newsletterHandler.Delete)
				})
			})
		})

		r.Route("/blog-posts", func(r chi.Router) {
			r.Get("/", blogHandler.AdminList)

			r.Group(func(r chi.Router) {
				r.Use(adminGate...)
				r.Post("/", blogHandler.Create)
				r.Post("/import-feed", generateHandler.ImportFeed)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", blogHandler.AdminGet)
					r.Put("/", blogHandler.Update)
					r.Delete("/", blogHandler.Delete)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(adminGate...)

			r.Get("/overview", dashboardHandler.Overview)
			r.Get("/content-stats", dashboardHandler.ContentStats)

			r.Route("/products", func(r chi.Router) {
				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})

			r.Route("/presentations", func(r chi.Router) {
				r.Get("/", presentationHandler.AdminList)
				r.Post("/", presentationHandler.Create)
				r.Delete("/{id}", presentationHandler.Delete)
			})

			r.Route("/bio", func(r chi.Router) {
				r.Post("/", bioHandler.Create)
				r.Delete("/{id}", bioHandler.Delete)
			})

			r.Route("/testimonials", func(r chi.Router) {
				r.Post("/", testimonialHandler.Create)
				r.Delete("/{id}", testimonialHandler.Delete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.ListAdmins)
				r.Post("/set-admin", userHandler.SetAdmin)
				r.Post("/remove-admin", userHandler.RemoveAdmin)
				r.Post("/subscription", userHandler.UpdateSubscription)
			})
		})
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.PingContext(r.Context()); err != nil {
			slog.Error("ヘルスチェックでDB疎通に失敗しました", slog.String("error", err.Error()))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
