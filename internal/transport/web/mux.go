package web

import (
	"net/http"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux creates and configures the HTTP router / Crée et configure le routeur HTTP
// Every authenticated read is open to all roles unless a permission is named.
// Mutations also need the CSRF token and are written to the audit log.
func NewMux(h *Handler, mw *Middleware) http.Handler {
	mux := http.NewServeMux()
	conf := h.container.Config

	read := func(f http.HandlerFunc, perms ...domain.Permission) http.Handler {
		middlewares := []func(http.Handler) http.Handler{mw.Auth, mw.RateLimitByUser}
		for _, p := range perms {
			middlewares = append(middlewares, mw.RequirePermission(p))
		}
		return chain(f, middlewares...)
	}
	write := func(f http.HandlerFunc, perm domain.Permission, action string) http.Handler {
		return chain(f, mw.Auth, mw.RateLimitByUser, mw.CSRF, mw.RequirePermission(perm), mw.Activity(action))
	}

	// Probes stay unauthenticated for load balancers.
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /readiness", h.ReadinessCheck)

	// Internal metrics are admin only. Scrape from a separate network path if
	// Prometheus cannot authenticate.
	metricsHandler := promhttp.HandlerFor(h.container.Registry, promhttp.HandlerOpts{})
	mux.Handle("GET /metrics", read(metricsHandler.ServeHTTP, domain.PermissionSystemAdmin))

	// Authentication / Authentification
	mux.Handle("POST /api/auth/login", chain(h.Login, mw.RateLimitStrict))
	mux.Handle("POST /api/auth/refresh", chain(h.RefreshToken, mw.RateLimitStrict))
	mux.Handle("POST /api/auth/logout", chain(h.Logout, mw.Auth, mw.CSRF))
	mux.Handle("GET /api/auth/me", read(h.Me))

	// Administration
	mux.Handle("GET /api/admin/users", read(h.ListUsers, domain.PermissionUsersManage))
	mux.Handle("POST /api/admin/users", write(h.CreateUser, domain.PermissionUsersManage, "user.create"))
	mux.Handle("PUT /api/admin/users/{id}/role", write(h.UpdateUserRole, domain.PermissionUsersManage, "user.role"))
	mux.Handle("PUT /api/admin/users/{id}/password", write(h.ResetUserPassword, domain.PermissionUsersManage, "user.password"))
	mux.Handle("DELETE /api/admin/users/{id}", write(h.DeleteUser, domain.PermissionUsersManage, "user.delete"))
	mux.Handle("GET /api/admin/activity", read(h.ListActivity, domain.PermissionActivityRead))

	// Referential / Référentiel
	mux.Handle("GET /api/produits", read(h.ListProducts))
	mux.Handle("GET /api/produits/{id}", read(h.GetProduct))
	mux.Handle("POST /api/produits", write(h.CreateProduct, domain.PermissionReferentielWrite, "produit.create"))
	mux.Handle("PUT /api/produits/{id}", write(h.UpdateProduct, domain.PermissionReferentielWrite, "produit.update"))
	mux.Handle("DELETE /api/produits/{id}", write(h.DeleteProduct, domain.PermissionReferentielWrite, "produit.delete"))
	mux.Handle("GET /api/lignes", read(h.ListLignes))
	mux.Handle("GET /api/lignes/{ligne}/references", read(h.ListReferences))

	mux.Handle("GET /api/semaines", read(h.ListSemaines))
	mux.Handle("GET /api/semaines/current", read(h.CurrentSemaine))
	mux.Handle("GET /api/semaines/{id}", read(h.GetSemaine))
	mux.Handle("POST /api/semaines", write(h.CreateSemaine, domain.PermissionReferentielWrite, "semaine.create"))
	mux.Handle("PUT /api/semaines/{id}", write(h.UpdateSemaine, domain.PermissionReferentielWrite, "semaine.update"))
	mux.Handle("DELETE /api/semaines/{id}", write(h.DeleteSemaine, domain.PermissionReferentielWrite, "semaine.delete"))

	mux.Handle("GET /api/commentaires", read(h.ListCommentaires))
	mux.Handle("GET /api/commentaires/{id}", read(h.GetCommentaire))
	mux.Handle("POST /api/commentaires", write(h.CreateCommentaire, domain.PermissionReferentielWrite, "commentaire.create"))
	mux.Handle("PUT /api/commentaires/{id}", write(h.UpdateCommentaire, domain.PermissionReferentielWrite, "commentaire.update"))
	mux.Handle("DELETE /api/commentaires/{id}", write(h.DeleteCommentaire, domain.PermissionReferentielWrite, "commentaire.delete"))

	// Planning and production / Planification et production
	mux.Handle("GET /api/planifications", read(h.ListPlanifications))
	mux.Handle("GET /api/planifications/export", read(h.ExportPlanifications))
	mux.Handle("GET /api/planifications/{id}", read(h.GetPlanification))
	mux.Handle("GET /api/planifications/{id}/non-conformite", read(h.GetPlanificationNonConformite))
	mux.Handle("POST /api/planifications", write(h.CreatePlanification, domain.PermissionPlanningWrite, "planification.create"))
	mux.Handle("POST /api/planifications/batch", write(h.CreatePlanificationBatch, domain.PermissionPlanningWrite, "planification.import"))
	mux.Handle("PUT /api/planifications/{id}", write(h.UpdatePlanification, domain.PermissionPlanningWrite, "planification.update"))
	mux.Handle("PUT /api/planifications/{id}/production", write(h.DeclareProduction, domain.PermissionProductionDecl, "production.declare"))
	mux.Handle("DELETE /api/planifications/{id}", write(h.DeletePlanification, domain.PermissionPlanningWrite, "planification.delete"))

	mux.Handle("GET /api/non-conformites", read(h.ListNonConformites))
	mux.Handle("GET /api/non-conformites/{id}", read(h.GetNonConformite))
	mux.Handle("GET /api/non-conformites/{id}/historique", read(h.NonConformiteHistory))
	mux.Handle("PUT /api/non-conformites/{id}/causes", write(h.DeclareCauses, domain.PermissionNonConfWrite, "nonconf.causes"))
	mux.Handle("DELETE /api/non-conformites/{id}", write(h.DeleteNonConformite, domain.PermissionPlanningWrite, "nonconf.delete"))

	// Workforce / Effectifs
	mux.Handle("GET /api/ouvriers", read(h.ListOuvriers))
	mux.Handle("GET /api/ouvriers/{matricule}", read(h.GetOuvrier))
	mux.Handle("GET /api/ouvriers/{matricule}/statuts", read(h.OuvrierStatuts))
	mux.Handle("POST /api/ouvriers", write(h.CreateOuvrier, domain.PermissionOuvriersWrite, "ouvrier.create"))
	mux.Handle("PUT /api/ouvriers/{matricule}", write(h.UpdateOuvrier, domain.PermissionOuvriersWrite, "ouvrier.update"))
	mux.Handle("DELETE /api/ouvriers/{matricule}", write(h.DeleteOuvrier, domain.PermissionOuvriersWrite, "ouvrier.delete"))

	mux.Handle("GET /api/statuts", read(h.ListStatuts))
	mux.Handle("GET /api/statuts/summary", read(h.StatutsSummary))
	mux.Handle("PUT /api/statuts", write(h.SetStatut, domain.PermissionStatutsWrite, "statut.set"))
	mux.Handle("DELETE /api/statuts/{id}", write(h.DeleteStatut, domain.PermissionStatutsWrite, "statut.delete"))

	mux.Handle("GET /api/selections", read(h.ListSelections))
	mux.Handle("POST /api/selections", write(h.CreateSelection, domain.PermissionPlanningWrite, "selection.create"))
	mux.Handle("DELETE /api/selections/{id}", write(h.DeleteSelection, domain.PermissionPlanningWrite, "selection.delete"))

	mux.Handle("GET /api/rapports", read(h.ListRapports))
	mux.Handle("GET /api/rapports/{id}", read(h.GetRapport))
	mux.Handle("PUT /api/rapports", write(h.SaveRapport, domain.PermissionRapportsWrite, "rapport.save"))
	mux.Handle("DELETE /api/rapports/{id}", write(h.DeleteRapport, domain.PermissionRapportsWrite, "rapport.delete"))

	// Statistics / Statistiques
	mux.Handle("GET /api/stats/dashboard", read(h.Dashboard, domain.PermissionStatsRead))
	mux.Handle("GET /api/stats/semaines/{semaine}", read(h.SemaineStats, domain.PermissionStatsRead))
	mux.Handle("GET /api/stats/causes", read(h.CauseStats, domain.PermissionStatsRead))
	mux.Handle("GET /api/stats/references", read(h.ReferenceStats, domain.PermissionStatsRead))
	mux.Handle("GET /api/stats/lignes/{ligne}", read(h.LigneStats, domain.PermissionStatsRead))
	mux.Handle("GET /api/stats/mois/{annee}", read(h.MoisStats, domain.PermissionStatsRead))
	mux.Handle("GET /api/stats/export", read(h.ExportStats, domain.PermissionStatsRead))

	// Global middlewares - applied in reverse order / Middlewares globaux appliqués en ordre inverse
	// Metrics wraps the mux directly so it sees the matched route pattern.
	var handler http.Handler = mux
	handler = mw.MetricsMiddleware(handler)
	handler = mw.RateLimit(handler)
	handler = mw.SecurityHeaders(handler)
	handler = mw.Cors(handler)
	handler = Timeout(conf.Server.RequestTimeout)(handler)
	handler = Logging(handler)   // Logging includes request ID
	handler = RequestID(handler) // RequestID first - generates ID for all middleware

	return handler
}

// chain applies middleware to HTTP handler / Applique les middlewares au gestionnaire HTTP
// The first middleware is the outermost.
func chain(f http.HandlerFunc, middlewares ...func(http.Handler) http.Handler) http.Handler {
	var handler http.Handler = f
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
