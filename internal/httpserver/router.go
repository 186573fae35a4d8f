package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealdesk/internal/auth"
	"dealdesk/internal/contracts"
	"dealdesk/internal/httpserver/handlers"
)

func NewRouter(db *gorm.DB, svc *contracts.Service, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/v1/auth/login", handlers.Login(db, lg))

	// Public share-link surface: the access token is the only credential,
	// and the sign route is the only write it authorizes.
	r.Get("/v1/public/contracts/{token}", handlers.ViewPublicContract(svc, lg))
	r.Post("/v1/public/contracts/{token}/sign", handlers.SignPublicContract(svc, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(db))
		protected.Get("/v1/me", handlers.Me(db, lg))
		protected.Post("/v1/auth/logout", handlers.Logout(db))

		protected.Post("/v1/contracts", handlers.CreateContract(svc, lg))
		protected.Post("/v1/contracts/generate", handlers.GenerateContract(svc, lg))
		protected.Get("/v1/contracts", handlers.ListContracts(svc, lg))
		protected.Get("/v1/contracts/{id}", handlers.GetContract(svc, lg))
		protected.Patch("/v1/contracts/{id}", handlers.UpdateContract(svc, lg))
		protected.Post("/v1/contracts/{id}/send", handlers.SendContract(svc, lg))
		protected.Post("/v1/contracts/{id}/countersign", handlers.CounterSignContract(svc, lg))
		protected.Post("/v1/contracts/{id}/revoke", handlers.RevokeContract(svc, lg))
		protected.Get("/v1/contracts/{id}/pdf", handlers.DownloadContractPDF(svc, lg))
		protected.Post("/v1/contracts/{id}/invoice", handlers.DeriveInvoice(svc, lg))

		protected.Post("/v1/templates", handlers.CreateTemplate(db, lg))
		protected.Get("/v1/templates", handlers.ListTemplates(db, lg))
		protected.Get("/v1/templates/{id}", handlers.GetTemplate(db, lg))
		protected.Patch("/v1/templates/{id}", handlers.UpdateTemplate(db, lg))
		protected.Delete("/v1/templates/{id}", handlers.DeleteTemplate(db, lg))

		protected.Post("/v1/proposals", handlers.CreateProposal(db, lg))
		protected.Get("/v1/proposals", handlers.ListProposals(db, lg))
		protected.Get("/v1/proposals/{id}", handlers.GetProposal(db, lg))

		protected.Get("/v1/events", handlers.MyEvents(db, lg))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
