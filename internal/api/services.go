package api

import (
	"github.com/inkshelfapp/inkshelf-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Book     *service.BookService
	Author   *service.AuthorService
	Category *service.CategoryService
	Shopping *service.ShoppingService
}
