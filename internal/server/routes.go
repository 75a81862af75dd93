package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"promo-engine/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			// public zone
			r.Get("/deals", handler(s.StorefrontServer.getV1Deals))

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/evaluate", handler(s.postV1CheckoutEvaluate))
				r.Post("/apply", handler(s.postV1CheckoutApply))
				r.Post("/check/{id}", handler(s.postV1CheckoutCheck))
			})

			// admin zone
			r.Route("/admin/deals", func(r chi.Router) {
				r.Post("/", handler(s.postV1Deal))
				r.Get("/", handler(s.DealServer.getV1Deals))
				r.Get("/{id}", handler(s.getV1Deal))
				r.Put("/{id}", handler(s.putV1Deal))
				r.Delete("/{id}", handler(s.deleteV1Deal))
				r.Post("/{id}/toggle", handler(s.postV1DealToggle))
				r.Get("/{id}/stats", handler(s.getV1DealStats))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
