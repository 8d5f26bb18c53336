package controllers

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/fsdevblog/tinylink/internal/db"
	"github.com/fsdevblog/tinylink/internal/identity"
	"github.com/fsdevblog/tinylink/internal/models"
	"github.com/fsdevblog/tinylink/internal/repositories/memstore"
	"github.com/fsdevblog/tinylink/internal/services"
)

// LinksControllerSuite гоняет HTTP запросы через роутер поверх настоящих сервисов и хранилища в памяти.
type LinksControllerSuite struct {
	suite.Suite
	router *gin.Engine
	repo   *memstore.LinkRepo
}

func TestLinksControllerSuite(t *testing.T) {
	suite.Run(t, new(LinksControllerSuite))
}

func (s *LinksControllerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *LinksControllerSuite) SetupTest() {
	store := db.NewMemStorage()
	svc, err := services.Factory(store, zap.NewNop())
	s.Require().NoError(err)

	s.repo = memstore.NewLinkRepo(store)
	s.router = SetupRouter(RouterParams{
		Links:     svc.Links,
		Redirects: svc.Redirects,
		Ping:      svc.Ping,
		Identity:  identity.NewResolver(identity.PlainCodec{}, identity.Options{}),
		Logger:    zap.NewNop(),
	})
}

type request struct {
	method  string
	url     string
	body    string
	cookie  *http.Cookie
	gzipped bool
}

func (s *LinksControllerSuite) do(r request) *http.Response {
	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	if r.gzipped && r.body != "" {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, err := gz.Write([]byte(r.body))
		s.Require().NoError(err)
		s.Require().NoError(gz.Close())
		body = &buf
	}

	req := httptest.NewRequest(r.method, r.url, body)
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.gzipped {
		req.Header.Set("Content-Encoding", "gzip")
		req.Header.Set("Accept-Encoding", "gzip")
	}
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec.Result()
}

// create создает ссылку и возвращает ее вместе с cookie владельца.
func (s *LinksControllerSuite) create(cookie *http.Cookie, body string) (models.Link, *http.Cookie) {
	res := s.do(request{method: http.MethodPost, url: "/api/links", body: body, cookie: cookie})
	defer res.Body.Close()
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	var link models.Link
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&link))

	if cookie == nil {
		cookie = s.ownerCookie(res)
	}
	return link, cookie
}

func (s *LinksControllerSuite) ownerCookie(res *http.Response) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == identity.DefaultCookieName {
			return c
		}
	}
	s.FailNow("identity cookie is not set")
	return nil
}

func (s *LinksControllerSuite) errorBody(res *http.Response) string {
	var body errorResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	return body.Error
}

func (s *LinksControllerSuite) TestCreate_IssuesIdentity() {
	res := s.do(request{method: http.MethodPost, url: "/api/links", body: `{"url":"https://example.com/a"}`})
	defer res.Body.Close()
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	cookie := s.ownerCookie(res)
	s.Equal("/", cookie.Path)
	s.True(cookie.HttpOnly)
	s.Equal(http.SameSiteLaxMode, cookie.SameSite)
	s.Equal(int((365 * 24 * time.Hour).Seconds()), cookie.MaxAge)

	var link models.Link
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&link))
	s.Equal(cookie.Value, link.OwnerID)
	s.Len(link.Code, 7)
	s.Equal("https://example.com/a", link.OriginalURL)
	s.Zero(link.ClickCount)
	s.Nil(link.LastClicked)

	// повторное предъявление cookie не выдает новую личность
	again := s.do(request{method: http.MethodGet, url: "/api/links", cookie: cookie})
	defer again.Body.Close()
	s.Empty(again.Cookies())

	var links []models.Link
	s.Require().NoError(json.NewDecoder(again.Body).Decode(&links))
	s.Require().Len(links, 1)
	s.Equal(link.Code, links[0].Code)
}

func (s *LinksControllerSuite) TestCreate_CustomCode() {
	link, _ := s.create(nil, `{"url":"https://example.com","code":"mylink1"}`)
	s.Equal("mylink1", link.Code)

	// пустой код означает генерацию
	generated, _ := s.create(nil, `{"url":"https://example.com","code":""}`)
	s.Len(generated.Code, 7)
}

func (s *LinksControllerSuite) TestCreate_Conflict() {
	original, owner := s.create(nil, `{"url":"https://first.example.com","code":"taken01"}`)

	res := s.do(request{method: http.MethodPost, url: "/api/links", body: `{"url":"https://second.example.com","code":"taken01"}`})
	defer res.Body.Close()
	s.Equal(http.StatusConflict, res.StatusCode)
	s.Equal("Code already exists", s.errorBody(res))

	get := s.do(request{method: http.MethodGet, url: "/api/links/taken01", cookie: owner})
	defer get.Body.Close()
	var stored models.Link
	s.Require().NoError(json.NewDecoder(get.Body).Decode(&stored))
	s.Equal(original.ID, stored.ID)
	s.Equal("https://first.example.com", stored.OriginalURL)
}

func (s *LinksControllerSuite) TestCreate_Rejections() {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "not a url", body: `{"url":"not a url"}`, message: "Invalid URL format"},
		{name: "empty url", body: `{"url":""}`, message: "Invalid URL format"},
		{name: "short code", body: `{"url":"https://example.com","code":"ab"}`, message: "Code must be 6-8 lowercase alphanumeric characters"},
		{name: "uppercase code", body: `{"url":"https://example.com","code":"AB12345"}`, message: "Code must be 6-8 lowercase alphanumeric characters"},
		{name: "broken json", body: `{"url":`, message: "Invalid request body"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			res := s.do(request{method: http.MethodPost, url: "/api/links", body: tt.body})
			defer res.Body.Close()
			s.Equal(http.StatusBadRequest, res.StatusCode)
			s.Equal(tt.message, s.errorBody(res))
		})
	}

	s.Zero(s.listCount(nil))
}

func (s *LinksControllerSuite) listCount(cookie *http.Cookie) int {
	res := s.do(request{method: http.MethodGet, url: "/api/links", cookie: cookie})
	defer res.Body.Close()
	s.Require().Equal(http.StatusOK, res.StatusCode)
	var links []models.Link
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&links))
	return len(links)
}

func (s *LinksControllerSuite) TestList_EmptyIsArray() {
	res := s.do(request{method: http.MethodGet, url: "/api/links"})
	defer res.Body.Close()
	s.Equal(http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	s.JSONEq(`[]`, string(body))
	s.ownerCookie(res)
}

func (s *LinksControllerSuite) TestList_NewestFirst() {
	first, owner := s.create(nil, `{"url":"https://example.com/1"}`)
	time.Sleep(2 * time.Millisecond)
	second, _ := s.create(owner, `{"url":"https://example.com/2"}`)

	res := s.do(request{method: http.MethodGet, url: "/api/links", cookie: owner})
	defer res.Body.Close()
	var links []models.Link
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&links))
	s.Require().Len(links, 2)
	s.Equal(second.Code, links[0].Code)
	s.Equal(first.Code, links[1].Code)
}

func (s *LinksControllerSuite) TestOwnershipIsolation() {
	link, owner := s.create(nil, `{"url":"https://example.com/private"}`)
	_, stranger := s.create(nil, `{"url":"https://example.com/other"}`)
	s.NotEqual(owner.Value, stranger.Value)

	s.Equal(1, s.listCount(stranger))

	get := s.do(request{method: http.MethodGet, url: "/api/links/" + link.Code, cookie: stranger})
	defer get.Body.Close()
	s.Equal(http.StatusNotFound, get.StatusCode)
	s.Equal("Link not found or you don't have permission to access it", s.errorBody(get))

	del := s.do(request{method: http.MethodDelete, url: "/api/links/" + link.Code, cookie: stranger})
	defer del.Body.Close()
	s.Equal(http.StatusNotFound, del.StatusCode)

	// ссылка владельца не пострадала
	own := s.do(request{method: http.MethodGet, url: "/api/links/" + link.Code, cookie: owner})
	defer own.Body.Close()
	s.Equal(http.StatusOK, own.StatusCode)
}

func (s *LinksControllerSuite) TestDelete() {
	link, owner := s.create(nil, `{"url":"https://example.com/bye"}`)

	res := s.do(request{method: http.MethodDelete, url: "/api/links/" + link.Code, cookie: owner})
	defer res.Body.Close()
	s.Equal(http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	s.JSONEq(`{"message":"Link deleted successfully"}`, string(body))

	again := s.do(request{method: http.MethodDelete, url: "/api/links/" + link.Code, cookie: owner})
	defer again.Body.Close()
	s.Equal(http.StatusNotFound, again.StatusCode)

	redirect := s.do(request{method: http.MethodGet, url: "/" + link.Code})
	defer redirect.Body.Close()
	s.Equal(http.StatusNotFound, redirect.StatusCode)
}

func (s *LinksControllerSuite) TestRedirect_RoundTrip() {
	target := gofakeit.URL()
	link, owner := s.create(nil, fmt.Sprintf(`{"url":%q}`, target))

	for _, path := range []string{"/" + link.Code, "/api/" + link.Code} {
		res := s.do(request{method: http.MethodGet, url: path})
		res.Body.Close()
		s.Equal(http.StatusFound, res.StatusCode)
		s.Equal(target, res.Header.Get("Location"))
	}

	res := s.do(request{method: http.MethodGet, url: "/api/links/" + link.Code, cookie: owner})
	defer res.Body.Close()
	var stored models.Link
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&stored))
	s.EqualValues(2, stored.ClickCount)
	s.Require().NotNil(stored.LastClicked)
}

func (s *LinksControllerSuite) TestRedirect_NormalizesScheme() {
	legacy := &models.Link{
		ID:          gofakeit.UUID(),
		Code:        "legacy1",
		OriginalURL: "example.com/page",
		CreatedAt:   time.Now().UTC(),
	}
	s.Require().NoError(s.repo.Insert(s.T().Context(), legacy))

	res := s.do(request{method: http.MethodGet, url: "/legacy1"})
	defer res.Body.Close()
	s.Equal(http.StatusFound, res.StatusCode)
	s.Equal("https://example.com/page", res.Header.Get("Location"))

	stored, err := s.repo.GetByCode(s.T().Context(), "legacy1")
	s.Require().NoError(err)
	s.Equal("example.com/page", stored.OriginalURL)
	s.EqualValues(1, stored.ClickCount)
}

func (s *LinksControllerSuite) TestRedirect_NotFound() {
	for _, path := range []string{"/zzzzzzz", "/api/zzzzzzz", "/favicon.ico"} {
		res := s.do(request{method: http.MethodGet, url: path})
		s.Equal(http.StatusNotFound, res.StatusCode, path)
		s.Equal("Link not found", s.errorBody(res))
		res.Body.Close()
	}
}

func (s *LinksControllerSuite) TestRedirect_Concurrent() {
	const n = 50
	link, _ := s.create(nil, `{"url":"https://example.com/hot"}`)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/"+link.Code, nil)
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)
		}()
	}
	wg.Wait()

	stored, err := s.repo.GetByCode(s.T().Context(), link.Code)
	s.Require().NoError(err)
	s.EqualValues(n, stored.ClickCount)
}

func (s *LinksControllerSuite) TestGzip() {
	res := s.do(request{
		method:  http.MethodPost,
		url:     "/api/links",
		body:    `{"url":"https://example.com/zipped","code":"zipped1"}`,
		gzipped: true,
	})
	defer res.Body.Close()
	s.Require().Equal(http.StatusCreated, res.StatusCode)
	s.Equal("gzip", res.Header.Get("Content-Encoding"))

	gz, err := gzip.NewReader(res.Body)
	s.Require().NoError(err)
	defer gz.Close()

	var link models.Link
	s.Require().NoError(json.NewDecoder(gz).Decode(&link))
	s.Equal("zipped1", link.Code)
}

func (s *LinksControllerSuite) TestPing() {
	res := s.do(request{method: http.MethodGet, url: "/ping"})
	defer res.Body.Close()
	s.Equal(http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	s.Equal("pong", string(body))
}
