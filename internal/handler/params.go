package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/course-registry/internal/apperror"
)

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, param string) (int, error) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id < 1 {
		return 0, apperror.InvalidID(param)
	}
	return id, nil
}
