package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase describes one request against a single handler.
type HTTPTestCase struct {
	Name    string
	Method  string // GET when empty
	Path    string // "/" when empty
	Owner   string // scopes the request like the Session middleware
	Body    any
	Headers map[string]string

	ExpectedStatus int
	// ExpectedBody is compared key by key against the top-level response fields
	ExpectedBody map[string]any
	// ExpectedErrorCode asserts a failure envelope carrying this code
	ExpectedErrorCode string

	Setup    func(t *testing.T, tc *TestContext)
	Validate func(t *testing.T, tc *TestContext)
}

// envelope mirrors dto.Response without importing the handler packages' types
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RunHTTPTestCases runs every case as a subtest.
func RunHTTPTestCases(t *testing.T, handler gin.HandlerFunc, cases []HTTPTestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, handler, tc)
		})
	}
}

// RunHTTPTestCase calls handler directly with a recorder-backed gin context.
func RunHTTPTestCase(t *testing.T, handler gin.HandlerFunc, tc HTTPTestCase) {
	t.Helper()

	method, path := tc.Method, tc.Path
	if method == "" {
		method = http.MethodGet
	}
	if path == "" {
		path = "/"
	}

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = newJSONRequest(t, method, path, tc.Body)
	for k, v := range tc.Headers {
		c.Request.Header.Set(k, v)
	}

	testCtx := &TestContext{Context: c, Recorder: w, Engine: engine}
	if tc.Owner != "" {
		testCtx.SetOwner(tc.Owner)
	}
	if tc.Setup != nil {
		tc.Setup(t, testCtx)
	}

	handler(c)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, w.Code, "status for %s %s: %s", method, path, w.Body.String())
	}
	if tc.ExpectedBody != nil {
		got := JSONResponse(t, testCtx)
		for key, want := range tc.ExpectedBody {
			assert.Equal(t, want, got[key], "field %q", key)
		}
	}
	if tc.ExpectedErrorCode != "" {
		AssertErrorResponse(t, testCtx, tc.ExpectedErrorCode)
	}
	if tc.Validate != nil {
		tc.Validate(t, testCtx)
	}
}

// Serve sends a JSON request through a fully routed handler, owner header
// included when owner is set.
func Serve(t *testing.T, h http.Handler, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newJSONRequest(t, method, path, body)
	if owner != "" {
		req.Header.Set(middleware.OwnerHeaderKey, owner)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	req := httptest.NewRequest(method, path, ToJSONReader(t, body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeData unwraps a success envelope and decodes its data field into T.
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.True(t, env.Success, "expected success envelope: %s", w.Body.String())

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// JSONResponse parses the response body as a generic JSON object.
func JSONResponse(t *testing.T, tc *TestContext) map[string]any {
	t.Helper()
	return JSONResponseAs[map[string]any](t, tc)
}

// JSONResponseAs parses the response body into T.
func JSONResponseAs[T any](t *testing.T, tc *TestContext) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &out), "response is not JSON: %s", tc.ResponseBody())
	return out
}

// AssertSuccessResponse asserts a success envelope without an error.
func AssertSuccessResponse(t *testing.T, tc *TestContext) {
	t.Helper()
	env := JSONResponseAs[envelope](t, tc)
	assert.True(t, env.Success, "expected success: %s", tc.ResponseBody())
	assert.Nil(t, env.Error)
}

// AssertErrorResponse asserts a failure envelope carrying code.
func AssertErrorResponse(t *testing.T, tc *TestContext, code string) {
	t.Helper()
	env := JSONResponseAs[envelope](t, tc)
	assert.False(t, env.Success, "expected failure: %s", tc.ResponseBody())
	require.NotNil(t, env.Error, "missing error object: %s", tc.ResponseBody())
	assert.Equal(t, code, env.Error.Code)
}

// ToJSONReader marshals v for use as a request body.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(raw)
}
