package logout

import (
	"net/http"

	"qanda-service/internal/auth"

	"github.com/go-chi/render"
)

type Response struct {
	Message string `json:"message"`
}

func New(secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth.ClearCookie(w, secureCookie)
		render.JSON(w, r, Response{Message: "logged out"})
	}
}
