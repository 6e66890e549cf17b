package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AndreiTelteu/team-status/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// インフラ
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// WebSocket同期エンドポイント
	WSHandler http.Handler

	// エンティティ管理
	EmployeeStore EmployeeStore
	ClientStore   ClientStore
	LeaveStore    LeaveStore
	OfferStore    OfferStore

	// エクスポート
	StatusCache StatusSnapshotter
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → LoggingMiddleware → RecoveryMiddleware → RateLimitMiddleware
//
// WebSocketルート（/ws）は長命接続のためレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())

	employeeHandler := NewEmployeeHandler(deps.EmployeeStore)
	clientHandler := NewClientHandler(deps.ClientStore)
	leaveHandler := NewLeaveHandler(deps.LeaveStore, deps.EmployeeStore)
	offerHandler := NewOfferHandler(deps.OfferStore, deps.ClientStore)
	exportHandler := NewExportHandler(deps.StatusCache, deps.Logger)

	// --- レート制限の外に置くルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	r.Handle("/ws", deps.WSHandler)

	// --- REST API ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware())

		// 従業員管理
		r.Route("/api/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.ListEmployees)
			r.Post("/", employeeHandler.CreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", employeeHandler.GetEmployee)
				r.Put("/", employeeHandler.UpdateEmployee)
				r.Delete("/", employeeHandler.DeleteEmployee)
			})
		})

		// 取引先管理
		r.Route("/api/clients", func(r chi.Router) {
			r.Get("/", clientHandler.ListClients)
			r.Post("/", clientHandler.CreateClient)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", clientHandler.GetClient)
				r.Put("/", clientHandler.UpdateClient)
				r.Delete("/", clientHandler.DeleteClient)
			})
		})

		// 休暇期間管理
		r.Route("/api/leaves", func(r chi.Router) {
			r.Get("/", leaveHandler.ListLeaves)
			r.Post("/", leaveHandler.CreateLeave)
			r.Delete("/{id}", leaveHandler.DeleteLeave)
		})

		// オファー管理
		r.Route("/api/offers", func(r chi.Router) {
			r.Get("/", offerHandler.ListOffers)
			r.Post("/", offerHandler.CreateOffer)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", offerHandler.GetOffer)
				r.Put("/", offerHandler.UpdateOffer)
				r.Delete("/", offerHandler.DeleteOffer)
			})
		})

		// CSVエクスポート
		r.Get("/api/export/statuses.csv", exportHandler.ExportStatusCSV)
	})

	return r
}
