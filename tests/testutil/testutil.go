// Package testutil holds helpers shared by handler, store and integration
// tests: recorder-backed gin contexts, a sqlmock-backed GORM handle, an
// in-process browser double and owner IDs that keep tests apart.
package testutil

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB is a PostgreSQL-dialect GORM handle over sqlmock. It closes itself
// and checks expectations when the test ends.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB passes opts through to sqlmock, e.g. sqlmock.MonitorPingsOption.
// sqlmock's option type is unexported, so it is inferred from sqlmock.New.
var NewMockDB = newMockDBFunc(sqlmock.New)

func newMockDBFunc[O any](newSQLMock func(...O) (*sql.DB, sqlmock.Sqlmock, error)) func(*testing.T, ...O) *MockDB {
	return func(t *testing.T, opts ...O) *MockDB {
		t.Helper()
		return newMockDB(t, newSQLMock, opts...)
	}
}

func newMockDB[O any](t *testing.T, newSQLMock func(...O) (*sql.DB, sqlmock.Sqlmock, error), opts ...O) *MockDB {
	t.Helper()

	sqlDB, mock, err := newSQLMock(opts...)
	require.NoError(t, err, "Failed to create sqlmock")

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}),
		&gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	m := &MockDB{DB: db, Mock: mock, SqlDB: sqlDB}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return m
}

// ExpectationsWereMet fails the test on unmet or unexpected statements.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// TestContext is a gin context whose response lands in Recorder.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext starts with GET / and no owner.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()
	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return &TestContext{Context: c, Recorder: w, Engine: engine}
}

// SetRequestID mimics middleware.RequestID.
func (tc *TestContext) SetRequestID(id string) {
	tc.Context.Set("request_id", id)
	tc.SetHeader("X-Request-ID", id)
}

// SetOwner mimics middleware.Session for ownerID.
func (tc *TestContext) SetOwner(ownerID string) {
	tc.Context.Set(middleware.OwnerIDKey, ownerID)
	tc.SetHeader(middleware.OwnerHeaderKey, ownerID)
}

func (tc *TestContext) SetHeader(key, value string) {
	tc.Context.Request.Header.Set(key, value)
}

func (tc *TestContext) ResponseBody() []byte { return tc.Recorder.Body.Bytes() }

func (tc *TestContext) ResponseCode() int { return tc.Recorder.Code }

// TestOwnerID returns a fresh owner that passes middleware.ValidOwnerID, so
// tests sharing a store or container never see each other's records.
func TestOwnerID(t *testing.T) string {
	t.Helper()
	return "test-" + uuid.NewString()[:8]
}
