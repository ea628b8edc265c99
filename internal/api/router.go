package api

import (
	"database/sql"
	"net/http"

	"github.com/mkoblar/sizzle/internal/asset"
	"github.com/mkoblar/sizzle/internal/item"
	"github.com/mkoblar/sizzle/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, assets *asset.Store, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	records := &store.Items{DB: db}
	itemsHandler := &ItemsHandler{
		Store:   records,
		Service: item.NewService(records, assets),
		Assets:  assets,
	}

	authMW := AuthMiddleware(jwtSecret)

	// Items: every API route requires an authenticated caller; update and
	// delete additionally require ownership, checked in the handler.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("POST /api/items/{id}/like", authMW(http.HandlerFunc(itemsHandler.Vote)))

	// Committed images are public.
	mux.HandleFunc("GET /images/{file}", itemsHandler.ServeImage)

	return mux
}
