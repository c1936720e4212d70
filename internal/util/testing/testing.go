package test_utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Response struct {
	Code int
	Body []byte
}

// MakeAPIRequest performs a request against the router and returns the raw
// recorder. Body may be nil.
func MakeAPIRequest(
	router *gin.Engine,
	method, path, authHeader string,
	body any,
) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func MakeRequest(
	t *testing.T,
	router *gin.Engine,
	method, path, authHeader string,
	body any,
	expectedStatus int,
) *Response {
	w := MakeAPIRequest(router, method, path, authHeader, body)
	assert.Equal(t, expectedStatus, w.Code, "unexpected status, body: %s", w.Body.String())

	return &Response{
		Code: w.Code,
		Body: w.Body.Bytes(),
	}
}

func MakeGetRequest(
	t *testing.T,
	router *gin.Engine,
	path, authHeader string,
	expectedStatus int,
) *Response {
	return MakeRequest(t, router, http.MethodGet, path, authHeader, nil, expectedStatus)
}

func MakePostRequest(
	t *testing.T,
	router *gin.Engine,
	path, authHeader string,
	body any,
	expectedStatus int,
) *Response {
	return MakeRequest(t, router, http.MethodPost, path, authHeader, body, expectedStatus)
}

func MakeDeleteRequest(
	t *testing.T,
	router *gin.Engine,
	path, authHeader string,
	expectedStatus int,
) *Response {
	return MakeRequest(t, router, http.MethodDelete, path, authHeader, nil, expectedStatus)
}

func MakeGetRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	path, authHeader string,
	expectedStatus int,
	response any,
) {
	resp := MakeGetRequest(t, router, path, authHeader, expectedStatus)
	require.NoError(t, json.Unmarshal(resp.Body, response))
}

func MakePostRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	path, authHeader string,
	body any,
	expectedStatus int,
	response any,
) {
	resp := MakePostRequest(t, router, path, authHeader, body, expectedStatus)
	require.NoError(t, json.Unmarshal(resp.Body, response))
}
