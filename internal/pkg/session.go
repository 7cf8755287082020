package pkg

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	SessionName = "confizz-session"

	sessUserIDKey = "user_id"
	sessTokenKey  = "access_token"
)

// SessionManager 浏览器侧登录态：cookie 里只放 access token，校验仍走 token + redis
type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(key string, secure bool, maxAge time.Duration) *SessionManager {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

func (m *SessionManager) Save(w http.ResponseWriter, r *http.Request, userID uint64, token string) error {
	sess, _ := m.store.Get(r, SessionName)
	sess.Values[sessUserIDKey] = userID
	sess.Values[sessTokenKey] = token
	return sess.Save(r, w)
}

// Token cookie 缺失或被篡改都返回空串
func (m *SessionManager) Token(r *http.Request) string {
	sess, err := m.store.Get(r, SessionName)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[sessTokenKey].(string)
	return token
}

func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, SessionName)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
