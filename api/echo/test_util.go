package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/mrdaoud/tadrees/core"
	"github.com/mrdaoud/tadrees/core/student"
	notifsvc "github.com/mrdaoud/tadrees/services/notification"
	inmemdb "github.com/mrdaoud/tadrees/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testApp struct {
	server Server
	conf   *core.Config
	svc    *student.Service
	repo   student.Repository
	notifs core.NotificationService
}

// nopLogger drops everything; request-level failures surface via the recorder.
type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// assistantStub implements core.AssistantService with a canned reply.
type assistantStub struct {
	answer string
	err    error
}

func (s assistantStub) Analyze(_ context.Context, _, _ string) (string, error) {
	return s.answer, s.err
}

func testConfig() *core.Config {
	conf := &core.Config{
		TestMode:         true,
		AppName:          "Tadrees",
		Env:              "TEST",
		SecretKey:        "secret",
		TutorName:        "مستر داود",
		TeacherSecret:    "20+1146801121",
		LeaderboardSize:  3,
		AbsenceThreshold: 2,
		DefaultExamTotal: 20,
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	return conf
}

func newTestApp(t *testing.T, assistant core.AssistantService) *testApp {
	conf := testConfig()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("newTestApp() failed: %v", err)
	}
	repo := inmemdb.NewStudentRepository(db)
	notifs := notifsvc.NewConsoleServiceMock()
	svc := student.NewService(repo, notifs, conf)

	keeper, err := core.NewSecretKeeper(conf)
	if err != nil {
		t.Fatalf("newTestApp() failed: %v", err)
	}

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	if assistant == nil {
		assistant = assistantStub{answer: "تمام"}
	}

	server := NewServer(ServerDeps{
		Conf:         conf,
		Logger:       nopLogger{},
		StudentSvc:   svc,
		Assistant:    assistant,
		NotifSvc:     notifs,
		SecretKeeper: keeper,
		Validate:     validate,
		Translator:   translator,
	})

	return &testApp{server: server, conf: conf, svc: svc, repo: repo, notifs: notifs}
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func (app *testApp) teacherToken(t *testing.T) string {
	token, err := GenerateToken(app.conf, GetTeacherClaims(app.conf))
	if err != nil {
		t.Fatalf("teacherToken() failed: %v", err)
	}
	return token
}

func (app *testApp) parentToken(t *testing.T, studentID string) string {
	token, err := GenerateToken(app.conf, GetParentClaims(app.conf, studentID))
	if err != nil {
		t.Fatalf("parentToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func createStudent(t *testing.T, repo student.Repository, name, phone, stage, level string) student.Student {
	s, err := repo.CreateStudent(student.Student{
		ID:             uuid.New().String(),
		Name:           name,
		ParentPhone:    phone,
		Stage:          stage,
		GradeLevel:     level,
		EnrollmentDate: student.Today(),
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return s
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
