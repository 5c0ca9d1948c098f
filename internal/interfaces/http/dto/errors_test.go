package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind string
		want int
	}{
		{kind: KindOrderNotFound, want: http.StatusNotFound},
		{kind: KindAlreadyFulfilled, want: http.StatusConflict},
		{kind: KindNothingToDo, want: http.StatusConflict},
		{kind: KindValidationFailed, want: http.StatusBadRequest},
		{kind: KindTransportFailed, want: http.StatusBadGateway},
		{kind: KindPlatformUnavailable, want: http.StatusBadGateway},
		{kind: KindRateLimited, want: http.StatusServiceUnavailable},
		{kind: KindBadCredentials, want: http.StatusInternalServerError},
		{kind: KindInternal, want: http.StatusInternalServerError},
		{kind: "something_else", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}
