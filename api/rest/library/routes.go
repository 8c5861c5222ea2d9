package library

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/auth"
	"codeberg.org/explainer/server/internal/library"
)

// registers library routes. reading is public; changing the catalog
// requires a signed-in user
func RegisterRoutes(router *gin.RouterGroup, service *library.Service) {
	booksGroup := router.Group("/books")
	{
		booksGroup.GET("", ListBooksHandler(service))
		booksGroup.GET("/:slug", GetBookHandler(service))
		booksGroup.GET("/:slug/content", GetContentHandler(service))
		booksGroup.POST("/upload", auth.AuthMiddleware(), UploadBookHandler(service))
		booksGroup.DELETE("/:slug", auth.AuthMiddleware(), DeleteBookHandler(service))
	}
}
