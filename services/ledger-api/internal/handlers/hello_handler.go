package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HelloHandler struct{}

func NewHelloHandler() *HelloHandler {
	return &HelloHandler{}
}

func (h *HelloHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.message("Hello World"))
	hello := r.Group("/hello")
	hello.GET("/", h.message("Hello World"))
	hello.GET("/hiya", h.message("Well Hi!"))
	hello.GET("/bye", h.message("Bye!"))
	hello.GET("/:user", h.HelloUser)
}

func (h *HelloHandler) message(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}

// HelloUser godoc
// @Summary      Greet a user
// @Tags         Hello
// @Produce      json
// @Param        user  path  string  true  "name"
// @Success      200  {object}  map[string]string
// @Router       /hello/{user} [get]
func (h *HelloHandler) HelloUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello " + c.Param("user")})
}
