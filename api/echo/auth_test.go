package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaoud/tadrees/core/student"
)

func decodeLogin(t *testing.T, body []byte) LoginResponse {
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func Test_authApi_teacherLogin(t *testing.T) {
	app := newTestApp(t, nil)

	t.Run("valid password", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/teacher", marchallObj(t, TeacherLoginRequest{Password: "20+1146801121"}))
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeLogin(t, rec.Body.Bytes())
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, RoleTeacher, resp.Role)
		assert.Nil(t, resp.Student)
	})

	t.Run("wrong password", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/teacher", marchallObj(t, TeacherLoginRequest{Password: "nope"}))
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marchallObj(t, httpErr{Error: "authentication failed"}))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing password", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/teacher", marchallObj(t, TeacherLoginRequest{}))
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marchallObj(t, map[string]string{"password": "this field is required"}))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func Test_authApi_parentLogin(t *testing.T) {
	app := newTestApp(t, nil)
	s := createStudent(t, app.repo, "أحمد محمد علي", "01012345678", student.StagePrimary, "الصف الرابع الابتدائي")

	t.Run("registered phone", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/parent", marchallObj(t, ParentLoginRequest{Phone: "01012345678"}))
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeLogin(t, rec.Body.Bytes())
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, RoleParent, resp.Role)
		require.NotNil(t, resp.Student)
		assert.Equal(t, s.ID, resp.Student.ID)
	})

	t.Run("unknown phone", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/parent", marchallObj(t, ParentLoginRequest{Phone: "01000000000"}))
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marchallObj(t, httpErr{Error: errParentNotRegistered}))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("duplicate phones: first registered student wins", func(t *testing.T) {
		s2 := createStudent(t, app.repo, "شقيق أحمد", "01012345678", student.StagePrep, "الصف الأول الإعدادي")
		_ = s2

		req, rec := newRequest(http.MethodPost, "/v1/auth/parent", marchallObj(t, ParentLoginRequest{Phone: "01012345678"}))
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeLogin(t, rec.Body.Bytes())
		assert.Equal(t, s.ID, resp.Student.ID)
	})
}

func Test_authApi_rotateSecret(t *testing.T) {
	app := newTestApp(t, nil)
	s := createStudent(t, app.repo, "أحمد محمد علي", "01012345678", student.StagePrimary, "الصف الرابع الابتدائي")

	t.Run("requires teacher role", func(t *testing.T) {
		body := marchallObj(t, RotateSecretRequest{Current: "20+1146801121", New: "new-secret-123"})

		req, rec := newRequest(http.MethodPut, "/v1/auth/teacher-secret", body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		req, rec = newAuthRequest(http.MethodPut, "/v1/auth/teacher-secret", app.parentToken(t, s.ID), body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong current secret", func(t *testing.T) {
		body := marchallObj(t, RotateSecretRequest{Current: "nope", New: "new-secret-123"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/auth/teacher-secret", app.teacherToken(t), body)
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rotation replaces the secret for this session", func(t *testing.T) {
		body := marchallObj(t, RotateSecretRequest{Current: "20+1146801121", New: "new-secret-123"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/auth/teacher-secret", app.teacherToken(t), body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		// old secret no longer authenticates
		req, rec = newRequest(http.MethodPost, "/v1/auth/teacher", marchallObj(t, TeacherLoginRequest{Password: "20+1146801121"}))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		// new secret does
		req, rec = newRequest(http.MethodPost, "/v1/auth/teacher", marchallObj(t, TeacherLoginRequest{Password: "new-secret-123"}))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_authApi_refreshToken(t *testing.T) {
	app := newTestApp(t, nil)

	req, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", app.teacherToken(t))
	app.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeLogin(t, rec.Body.Bytes())
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, RoleTeacher, resp.Role)
}
