package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Students *repository.StudentRepo
	Tokens   *repository.TokenRepo
}

// NewAuthHandler constructs an AuthHandler with the provided repositories.
func NewAuthHandler(cfg config.Config, s *repository.StudentRepo, t *repository.TokenRepo) *AuthHandler {
	if s == nil || t == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Students: s, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Type      uint8  `json:"type"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type studentPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Type     uint8  `json:"type"`
	Role     string `json:"role"`
}
type authResp struct {
	Student studentPart `json:"student"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

// Register creates a student account and returns a token pair
// immediately. All self-registered accounts get the STUDENT role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, fault.New(fault.Invalid, "invalid request body"))
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return writeError(c, fault.New(fault.Invalid, "username and password are required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	student := &model.Student{
		Username:  req.Username,
		Name:      req.Name,
		StudentID: req.StudentID,
		Email:     req.Email,
		Phone:     req.Phone,
		Type:      req.Type,
		Role:      "STUDENT",
	}
	if err := h.Students.Create(ctx, student, req.Password, h.Cfg.BcryptCost); err != nil {
		return writeError(c, err)
	}
	return h.issuePair(c, ctx, student, http.StatusCreated)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, fault.New(fault.Invalid, "invalid request body"))
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return writeError(c, fault.New(fault.Invalid, "username and password are required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	student, err := h.Students.GetByUsername(ctx, req.Username)
	if err != nil {
		if fault.KindOf(err) == fault.NotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return writeError(c, err)
	}
	if !utils.VerifyPassword(student.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issuePair(c, ctx, student, http.StatusOK)
}

// Refresh validates a refresh token by hash, revokes it and issues a
// new pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return writeError(c, fault.New(fault.Invalid, "refresh_token required"))
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	studentID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	student, err := h.Students.GetByID(ctx, studentID)
	if err != nil {
		return writeError(c, err)
	}
	return h.issuePair(c, ctx, student, http.StatusOK)
}

// Logout revokes the refresh token supplied in the body. The endpoint
// does not require an access token so that an expired session can still
// be terminated.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return writeError(c, fault.New(fault.Invalid, "refresh_token required"))
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every active refresh token of the authenticated
// student, terminating all of their sessions at once.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeAllForStudent(ctx, studentID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated student's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	student, err := h.Students.GetByID(c.Request().Context(), studentID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         student.ID,
		"username":   student.Username,
		"name":       student.Name,
		"student_id": student.StudentID,
		"email":      student.Email,
		"phone":      student.Phone,
		"type":       student.Type,
		"role":       student.Role,
	})
}

// ListStudents returns every registered account without password
// hashes. Registered on the admin group only.
func (h *AuthHandler) ListStudents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Students.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]echo.Map, 0, len(list))
	for _, s := range list {
		out = append(out, echo.Map{
			"id":         s.ID,
			"username":   s.Username,
			"name":       s.Name,
			"student_id": s.StudentID,
			"email":      s.Email,
			"phone":      s.Phone,
			"type":       s.Type,
			"role":       s.Role,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"students": out})
}

// issuePair signs an access token, stores a hashed refresh token and
// writes the auth response.
func (h *AuthHandler) issuePair(c echo.Context, ctx context.Context, student *model.Student, status int) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, student.ID, student.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return writeError(c, err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Tokens.StoreRefresh(ctx, student.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return writeError(c, err)
	}
	return c.JSON(status, authResp{
		Student: studentPart{ID: student.ID, Username: student.Username, Type: student.Type, Role: student.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}
