package handlers

import (
	"net/http"
	"todoBot/internal/service"
)

func mapCodeToHTTP(code string) int {
	switch code {
	case "":
		return http.StatusOK
	case service.CodeInvalidInput:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodePrecondition:
		return http.StatusConflict
	case service.CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
