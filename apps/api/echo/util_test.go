package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/revisehub/revisehub/apps/api/echo"
	"github.com/revisehub/revisehub/core"
	"github.com/revisehub/revisehub/core/note"
	"github.com/revisehub/revisehub/core/plan"
	"github.com/revisehub/revisehub/core/progress"
	"github.com/revisehub/revisehub/core/user"
	appfs "github.com/revisehub/revisehub/fs"
	emailsvc "github.com/revisehub/revisehub/services/email"
	dummydb "github.com/revisehub/revisehub/storage/database/dummy"
	"github.com/revisehub/revisehub/storage/files"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testDeps struct {
	conf    *core.Config
	usrRepo user.Repository
	usrSvc  user.Service
	noteSvc note.Service
	planSvc plan.Service
}

func newTestConfig() *core.Config {
	return &core.Config{
		Debug:                true,
		TestMode:             true,
		Env:                  "TEST",
		AppName:              "ReviseHub",
		SecretKey:            "secret-test-key",
		FrontendBaseURL:      "http://localhost:5173",
		DefaultFromEmail:     "noreply@revisehub.local",
		PasswordResetTimeout: 15 * time.Minute,
		Server: core.ServerConfig{
			JWTExpirationDelta: 24 * time.Hour,
		},
	}
}

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

func setup(t *testing.T) (Server, *testDeps) {
	t.Helper()

	conf := newTestConfig()
	logger := testLogger{t}

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	noteSvc := note.NewService(dummydb.NewNoteRepository(db), files.NewDummyStorage())
	planSvc := plan.NewService(dummydb.NewPlanRepository(db))
	progressSvc := progress.NewService(noteSvc, planSvc, logger)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(appfs.FS, conf, logger)

	app := NewServer(&Options{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		NoteSvc:        noteSvc,
		PlanSvc:        planSvc,
		ProgressSvc:    progressSvc,
	})

	deps := &testDeps{
		conf:    conf,
		usrRepo: usrRepo,
		usrSvc:  usrSvc,
		noteSvc: noteSvc,
		planSvc: planSvc,
	}
	return app, deps
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func createUser(t *testing.T, deps *testDeps, name, email, pwd string) user.User {
	t.Helper()
	usr, err := deps.usrSvc.Register(context.Background(), user.NewUser{Name: name, Email: email, Password: pwd})
	if err != nil {
		t.Fatalf("creating user %q: %v", email, err)
	}
	return usr
}

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

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest builds a multipart note-upload request; a nil file means
// the file part is omitted entirely.
func newUploadRequest(t *testing.T, token string, fields map[string]string, fileName string, file io.Reader) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err = io.Copy(fw, file); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/notes", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
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
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}
