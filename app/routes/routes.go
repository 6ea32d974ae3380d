package routes

import (
	"net/http"

	"scribe/app/config"
	"scribe/app/controllers"
	"scribe/app/middleware"
	"scribe/app/repositories"
	"scribe/app/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// SetupRoutes wires the repositories in store through the services and
// controllers and returns the API router.
func SetupRoutes(store *repositories.Store, cfg *config.Config) (*mux.Router, error) {
	var cache *services.SummaryCache
	if cfg.Cache.SummaryTTL > 0 {
		var err error
		if cache, err = services.NewSummaryCache(cfg.Cache.SummaryTTL); err != nil {
			return nil, err
		}
	}
	populate := services.NewPopulator(store.Users, store.Categories, cache)

	postService := services.NewPostService(store.Posts, store.Comments, store.Categories, populate).
		WithPaging(cfg.Posts.PerPage, cfg.Posts.MaxPerPage)
	commentService := services.NewCommentService(store.Comments, store.Posts, populate)
	categoryService := services.NewCategoryService(store.Categories, store.Posts, populate)
	userService := services.NewUserService(store.Users)

	router := mux.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger)
	router.Use(middleware.ContentTypeJSON(cfg.Server.APIPrefix))
	notAllowed := jsonStatus(http.StatusMethodNotAllowed, "method not allowed")
	router.NotFoundHandler = jsonStatus(http.StatusNotFound, "route not found")
	router.MethodNotAllowedHandler = notAllowed

	// Subrouters answer method mismatches themselves; mux does not consult
	// the parent's handler.
	api := router.PathPrefix(cfg.Server.APIPrefix).Subrouter()
	api.MethodNotAllowedHandler = notAllowed
	api.HandleFunc("/healthz", healthz).Methods("GET")

	headers := middleware.IdentityHeaders{
		UserID: cfg.Auth.UserIDHeader,
		Name:   cfg.Auth.UserNameHeader,
		Email:  cfg.Auth.UserEmailHeader,
	}
	content := api.NewRoute().Subrouter()
	content.MethodNotAllowedHandler = notAllowed
	content.Use(middleware.Authenticate(headers, userService))

	// Post routes
	postController := controllers.NewPostController(postService)
	content.HandleFunc("/posts", postController.Index).Methods("GET")
	content.HandleFunc("/posts", postController.Create).Methods("POST")
	content.HandleFunc("/posts/{id:[0-9]+}", postController.Show).Methods("GET")
	content.HandleFunc("/posts/{id:[0-9]+}", postController.Update).Methods("PUT")
	content.HandleFunc("/posts/{id:[0-9]+}", postController.Delete).Methods("DELETE")

	// Comment routes, nested under their post and flat
	commentController := controllers.NewCommentController(commentService)
	content.HandleFunc("/posts/{postId:[0-9]+}/comments", commentController.Index).Methods("GET")
	content.HandleFunc("/posts/{postId:[0-9]+}/comments", commentController.Create).Methods("POST")
	content.HandleFunc("/posts/{postId:[0-9]+}/comments/{id:[0-9]+}", commentController.Show).Methods("GET")
	content.HandleFunc("/posts/{postId:[0-9]+}/comments/{id:[0-9]+}", commentController.Update).Methods("PUT")
	content.HandleFunc("/posts/{postId:[0-9]+}/comments/{id:[0-9]+}", commentController.Delete).Methods("DELETE")
	content.HandleFunc("/comments", commentController.Index).Methods("GET")
	content.HandleFunc("/comments", commentController.Create).Methods("POST")
	content.HandleFunc("/comments/{id:[0-9]+}", commentController.Show).Methods("GET")
	content.HandleFunc("/comments/{id:[0-9]+}", commentController.Update).Methods("PUT")
	content.HandleFunc("/comments/{id:[0-9]+}", commentController.Delete).Methods("DELETE")

	// Category routes
	categoryController := controllers.NewCategoryController(categoryService)
	content.HandleFunc("/categories", categoryController.Index).Methods("GET")
	content.HandleFunc("/categories", categoryController.Create).Methods("POST")
	content.HandleFunc("/categories/{id:[0-9]+}", categoryController.Show).Methods("GET")
	content.HandleFunc("/categories/{id:[0-9]+}", categoryController.Delete).Methods("DELETE")

	log.Debug().Str("prefix", cfg.Server.APIPrefix).Msg("Routes registered")
	return router, nil
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func jsonStatus(status int, message string) http.Handler {
	body := []byte(`{"error":"` + message + `"}`)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	})
}
