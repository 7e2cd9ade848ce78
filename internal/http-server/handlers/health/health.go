package health

import (
	"net/http"

	"github.com/go-chi/render"
)

type ConnectionCounter interface {
	Count() int
}

type Response struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

func New(counter ConnectionCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Response{Status: "ok", Connections: counter.Count()})
	}
}
