package library

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/errors"
	"codeberg.org/explainer/server/internal/library"
)

// ListBooksHandler godoc
// @Summary List books
// @Description All books in the library, ordered by title
// @Tags library
// @Produce json
// @Success 200 {object} BooksResponse
// @Router /api/v1/books [get]
func ListBooksHandler(service *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := service.List(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to list books", err)
			return
		}

		if books == nil {
			books = []library.Book{}
		}

		c.JSON(http.StatusOK, BooksResponse{Books: books})
	}
}

// GetBookHandler godoc
// @Summary Get a book
// @Description Catalog entry for a single book
// @Tags library
// @Produce json
// @Param slug path string true "Book slug"
// @Success 200 {object} BookResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/books/{slug} [get]
func GetBookHandler(service *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		book, err := service.Get(c.Request.Context(), c.Param("slug"))

		if stderrors.Is(err, library.ErrNotFound) {
			errors.NotFound(c, "book")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load book", err)
			return
		}

		c.JSON(http.StatusOK, BookResponse{Book: book})
	}
}

// GetContentHandler godoc
// @Summary Get book content
// @Description Full plain text of a book, extracted from PDF when needed
// @Tags library
// @Produce json
// @Param slug path string true "Book slug"
// @Success 200 {object} ContentResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/books/{slug}/content [get]
func GetContentHandler(service *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		book, err := service.Get(c.Request.Context(), slug)

		if stderrors.Is(err, library.ErrNotFound) {
			errors.NotFound(c, "book")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load book", err)
			return
		}

		content, err := service.Content(c.Request.Context(), slug)
		if err != nil {
			errors.InternalError(c, "failed to read book content", err)
			return
		}

		c.JSON(http.StatusOK, ContentResponse{
			Slug:    book.Slug,
			Title:   book.Title,
			Content: content,
		})
	}
}

// UploadBookHandler godoc
// @Summary Upload a book
// @Description Add a text or PDF document to the library
// @Tags library
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Book title"
// @Param author formData string false "Author"
// @Param file formData file true "Document (.txt or .pdf)"
// @Success 201 {object} BookResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/books/upload [post]
// @Security BearerAuth
func UploadBookHandler(service *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.PostForm("title")
		if title == "" {
			errors.BadRequest(c, "title is required", nil)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			errors.BadRequest(c, "file is required", err)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			errors.BadRequest(c, "failed to open upload", err)
			return
		}

		defer file.Close() //nolint:errcheck

		data, err := io.ReadAll(file)
		if err != nil {
			errors.InternalError(c, "failed to read upload", err)
			return
		}

		book, err := service.Upload(c.Request.Context(), title, c.PostForm("author"), fileHeader.Filename, data)

		switch {
		case stderrors.Is(err, library.ErrSlugTaken):
			errors.Conflict(c, "a book with this title already exists")
			return
		case stderrors.Is(err, library.ErrBadFormat):
			errors.BadRequest(c, "only .txt and .pdf documents are supported", nil)
			return
		case stderrors.Is(err, library.ErrEmptyDocument):
			errors.BadRequest(c, "document contains no extractable text", nil)
			return
		case err != nil:
			errors.InternalError(c, "failed to add book", err)
			return
		}

		c.JSON(http.StatusCreated, BookResponse{Book: book})
	}
}

// DeleteBookHandler godoc
// @Summary Delete a book
// @Description Remove a book from the catalog and its document from disk
// @Tags library
// @Produce json
// @Param slug path string true "Book slug"
// @Success 204 {string} string "No Content"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/books/{slug} [delete]
// @Security BearerAuth
func DeleteBookHandler(service *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := service.Delete(c.Request.Context(), c.Param("slug"))

		if stderrors.Is(err, library.ErrNotFound) {
			errors.NotFound(c, "book")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to delete book", err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
