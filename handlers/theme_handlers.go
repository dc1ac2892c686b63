package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"journeylens/api/theme"
)

type ThemeHandlers struct {
	Flag *theme.Flag
}

func NewThemeHandlers(flag *theme.Flag) *ThemeHandlers {
	return &ThemeHandlers{Flag: flag}
}

func (h *ThemeHandlers) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.Flag.Name()})
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func (h *ThemeHandlers) SetTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	dark, err := theme.Parse(req.Theme)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.Flag.Set(dark)
	c.JSON(http.StatusOK, gin.H{"theme": h.Flag.Name()})
}

func (h *ThemeHandlers) ToggleTheme(c *gin.Context) {
	h.Flag.Toggle()
	c.JSON(http.StatusOK, gin.H{"theme": h.Flag.Name()})
}
