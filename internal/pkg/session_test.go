package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func TestSessionManagerSaveAndRead(t *testing.T) {
	m := NewSessionManager(testSessionKey, false, time.Hour)

	w := httptest.NewRecorder()
	require.NoError(t, m.Save(w, httptest.NewRequest(http.MethodPost, "/login/", nil), 9, "tok-123"))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
	r.AddCookie(cookies[0])
	assert.Equal(t, "tok-123", m.Token(r))
}

func TestSessionManagerRejectsForeignCookie(t *testing.T) {
	m := NewSessionManager(testSessionKey, false, time.Hour)
	other := NewSessionManager("ffffffffffffffffffffffffffffffff", false, time.Hour)

	w := httptest.NewRecorder()
	require.NoError(t, other.Save(w, httptest.NewRequest(http.MethodPost, "/login/", nil), 9, "tok-123"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(w.Result().Cookies()[0])
	assert.Empty(t, m.Token(r))

	assert.Empty(t, m.Token(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestSessionManagerClear(t *testing.T) {
	m := NewSessionManager(testSessionKey, false, time.Hour)

	w := httptest.NewRecorder()
	require.NoError(t, m.Clear(w, httptest.NewRequest(http.MethodPost, "/logout/", nil)))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)
}
