package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/books"
)

// fakeBackend is a minimal gin rendition of the bookstore API.
func fakeBackend(t *testing.T) (*gin.Engine, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return router, server
}

func TestClient_SendsBearerAndRequestID(t *testing.T) {
	router, server := fakeBackend(t)

	var gotAuth, gotRequestID string
	router.GET("/api/book", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		gotRequestID = c.GetHeader("X-Request-ID")
		c.JSON(http.StatusOK, []books.Book{})
	})

	c := NewClient(server.URL)
	c.SetToken("tok123")

	_, err := c.ListBooks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_NoHeaderWhenUnauthenticated(t *testing.T) {
	router, server := fakeBackend(t)

	var gotAuth string
	router.GET("/api/book", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		c.JSON(http.StatusOK, []books.Book{})
	})

	c := NewClient(server.URL)
	c.SetToken("tok")
	c.ClearToken()

	_, err := c.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ListBooks(t *testing.T) {
	router, server := fakeBackend(t)
	router.GET("/api/book", func(c *gin.Context) {
		c.JSON(http.StatusOK, []books.Book{
			{ID: 1, Title: "Dune", Author: "Herbert", LikeCount: 4},
		})
	})

	c := NewClient(server.URL)
	list, err := c.ListBooks(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dune", list[0].Title)
	assert.Equal(t, 4, list[0].LikeCount)
}

func TestClient_ListCategories(t *testing.T) {
	router, server := fakeBackend(t)
	router.GET("/api/book-category", func(c *gin.Context) {
		c.JSON(http.StatusOK, []books.Category{{ID: 1, Name: "Sci-Fi"}})
	})

	c := NewClient(server.URL)
	categories, err := c.ListCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Sci-Fi", categories[0].Name)
}

func TestClient_CreateUpdateDelete(t *testing.T) {
	router, server := fakeBackend(t)

	var created books.CreateBookRequest
	router.POST("/api/book", func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&created))
		c.JSON(http.StatusCreated, gin.H{"id": 10})
	})

	var patched map[string]any
	var patchedID string
	router.PATCH("/api/book/:id", func(c *gin.Context) {
		patchedID = c.Param("id")
		require.NoError(t, c.ShouldBindJSON(&patched))
		c.JSON(http.StatusOK, gin.H{})
	})

	var deletedID string
	router.DELETE("/api/book/:id", func(c *gin.Context) {
		deletedID = c.Param("id")
		c.Status(http.StatusNoContent)
	})

	c := NewClient(server.URL)
	ctx := context.Background()

	require.NoError(t, c.CreateBook(ctx, books.CreateBookRequest{Title: "Dune", Author: "Herbert"}))
	assert.Equal(t, "Dune", created.Title)

	require.NoError(t, c.UpdateBook(ctx, 7, map[string]any{"likeCount": 5}))
	assert.Equal(t, "7", patchedID)
	assert.Equal(t, float64(5), patched["likeCount"])

	require.NoError(t, c.DeleteBook(ctx, 7))
	assert.Equal(t, "7", deletedID)
}

// A 401 on any endpoint fires the injected failure callback, and the
// original call still observes its own error.
func TestClient_AuthFailureCallback(t *testing.T) {
	router, server := fakeBackend(t)
	router.GET("/api/book", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
	})
	router.DELETE("/api/book/:id", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
	})

	c := NewClient(server.URL)
	fired := 0
	c.OnAuthFailure(func() { fired++ })

	_, err := c.ListBooks(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = c.DeleteBook(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, 2, fired, "callback fires per 401 response, regardless of endpoint")
}

func TestClient_AuthFailureCallbackDeregistered(t *testing.T) {
	router, server := fakeBackend(t)
	router.GET("/api/book", func(c *gin.Context) {
		c.Status(http.StatusUnauthorized)
	})

	c := NewClient(server.URL)
	fired := 0
	c.OnAuthFailure(func() { fired++ })
	c.OnAuthFailure(nil)

	_, err := c.ListBooks(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, fired)
}

func TestClient_Login(t *testing.T) {
	router, server := fakeBackend(t)
	router.POST("/api/auth/login", func(c *gin.Context) {
		var req LoginRequest
		require.NoError(t, c.ShouldBindJSON(&req))
		if req.Username == "staff" && req.Password == "secret" {
			c.JSON(http.StatusOK, AuthResponse{AccessToken: "tok456"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad credentials"})
	})

	c := NewClient(server.URL)

	token, err := c.Login(context.Background(), "staff", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok456", token)

	_, err = c.Login(context.Background(), "staff", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	router, server := fakeBackend(t)
	router.GET("/api/book", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	c := NewClient(server.URL)
	_, err := c.ListBooks(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}
