package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	uverrors "github.com/wikisphere/userverify/internal/errors"
	logger "github.com/wikisphere/userverify/internal/logging"
	"github.com/wikisphere/userverify/internal/records"
	"github.com/wikisphere/userverify/internal/session"
	"github.com/wikisphere/userverify/internal/verification"

	"github.com/gin-gonic/gin"
)

// Identity resolves the current actor from the request. The host platform's
// session mechanism provides it; a typical deployment fills it from an auth
// proxy's trusted headers.
type Identity interface {
	CurrentUser(r *http.Request) (username string, userID int64, ok bool)
}

// Server exposes the verification workflows as a JSON API.
type Server struct {
	svc      *verification.Service
	carrier  *session.Carrier
	identity Identity
	log      logger.Logger
}

func NewServer(svc *verification.Service, carrier *session.Carrier, identity Identity, log logger.Logger) *Server {
	return &Server{svc: svc, carrier: carrier, identity: identity, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/session/unlock", s.unlock)
	r.POST("/session/logout", s.logout)

	r.POST("/verification", s.submit)
	r.GET("/verification/status", s.ownStatus)

	// Admin routes live under /users/:userID so the param segment never
	// collides with the static /verification paths above.
	admin := r.Group("/users/:userID", s.requireReviewer)
	admin.GET("/verification", s.view)
	admin.PUT("/verification/review", s.review)
	admin.GET("/verification/documents/:name", s.document)

	return r
}

func (s *Server) unlock(c *gin.Context) {
	username, _, ok := s.identity.CurrentUser(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	var input struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key, err := s.svc.Unlock(username, input.Password)
	if err != nil {
		s.renderError(c, err)
		return
	}

	s.carrier.Set(c.Writer, key)
	c.JSON(http.StatusOK, gin.H{"message": "key unlocked"})
}

func (s *Server) logout(c *gin.Context) {
	s.carrier.Delete(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// submit accepts a multipart form: a "fields" part holding the field-set
// JSON, plus one file part per file-kind field, named after the field.
func (s *Server) submit(c *gin.Context) {
	_, userID, ok := s.identity.CurrentUser(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse multipart form"})
		return
	}

	var fields records.FieldSet
	if err := fields.UnmarshalJSON([]byte(c.PostForm("fields"))); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fields payload"})
		return
	}

	files := make(map[string]io.Reader)
	var closers []io.Closer
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for name, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		src, err := headers[0].Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not open upload " + name})
			return
		}
		closers = append(closers, src)
		files[name] = src
	}

	if err := s.svc.Submit(userID, fields, files); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(records.StatusPending)})
}

func (s *Server) ownStatus(c *gin.Context) {
	_, userID, ok := s.identity.CurrentUser(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	status, err := s.svc.Status(userID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(status), "verified": status.Verified()})
}

// requireReviewer gates the administrative routes. The authorization lookup
// is memoized per request.
func (s *Server) requireReviewer(c *gin.Context) {
	username, _, ok := s.identity.CurrentUser(c.Request)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	cache := verification.AuthCache{}
	authorized, err := s.svc.Authorized(cache, username)
	if err != nil {
		s.log.Errorf("authorization check failed: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authorization check failed"})
		return
	}
	if !authorized {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": uverrors.ErrNotAuthorized.Error()})
		return
	}
	c.Set("username", username)
}

func (s *Server) view(c *gin.Context) {
	userID, ok := s.pathUserID(c)
	if !ok {
		return
	}

	userKey, err := s.carrier.Get(c.Request)
	if err != nil {
		s.renderError(c, err)
		return
	}

	view, err := s.svc.View(c.GetString("username"), userID, userKey)
	if err != nil {
		s.renderError(c, err)
		return
	}

	fields := make([]gin.H, 0, len(view.Fields))
	for _, f := range view.Fields {
		fields = append(fields, gin.H{"name": f.Name, "kind": string(f.Kind), "value": f.Value})
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   string(view.Status),
		"comments": view.Comments,
		"fields":   fields,
	})
}

func (s *Server) review(c *gin.Context) {
	userID, ok := s.pathUserID(c)
	if !ok {
		return
	}

	var input struct {
		Status   string `json:"status" binding:"required"`
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.svc.Review(c.GetString("username"), userID, records.Status(input.Status), input.Comments)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": input.Status})
}

func (s *Server) document(c *gin.Context) {
	userID, ok := s.pathUserID(c)
	if !ok {
		return
	}

	userKey, err := s.carrier.Get(c.Request)
	if err != nil {
		s.renderError(c, err)
		return
	}

	plain, err := s.svc.OpenDocument(c.GetString("username"), userID, c.Param("name"), userKey)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", plain)
}

func (s *Server) pathUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return userID, true
}

// renderError maps the error taxonomy to HTTP responses. Wrong-key and
// corrupted-data failures share one message.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, uverrors.ErrKeysNotSet):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "system not ready: verification keys are not set"})
	case errors.Is(err, uverrors.ErrWrongKeyOrCorrupted):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "password does not match or data is corrupted"})
	case errors.Is(err, uverrors.ErrUserKeyNotSet):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "cannot decrypt: no unlocked key for this session"})
	case errors.Is(err, uverrors.ErrRecordNotFound), errors.Is(err, uverrors.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, uverrors.ErrFileTooLarge), errors.Is(err, uverrors.ErrInvalidStatus), errors.Is(err, uverrors.ErrInvalidFilename):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
