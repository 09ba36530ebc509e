// Package xhttp normalizes the JSON response envelope of the API.
package xhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapExchange/src/common/errcode"
)

// Response is the uniform envelope: code 200 with data on success, an error
// code and message otherwise.
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// OkJson writes a success envelope.
func OkJson(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: errcode.CodeOK, Data: data})
}

// Error writes an error envelope. Unknown error types are masked behind the
// generic unexpected code so internals never leak to callers.
func Error(c *gin.Context, err error) {
	e, ok := err.(*errcode.Err)
	if !ok {
		e = errcode.ErrUnexpected
	}
	c.JSON(httpStatus(e.Code()), Response{Code: e.Code(), Msg: e.Msg()})
}

func httpStatus(code int) int {
	switch code {
	case errcode.CodeInvalidParams, errcode.CodeCustom, errcode.CodeInsufficient,
		errcode.CodePricing, errcode.CodeExpired:
		return http.StatusBadRequest
	case errcode.CodeNotFound:
		return http.StatusNotFound
	case errcode.CodeNoPermission:
		return http.StatusForbidden
	case errcode.CodeReentrant:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
