package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/dinewise/internal/middleware"
    "github.com/iliyamo/dinewise/internal/repository"
    "github.com/iliyamo/dinewise/internal/utils"
)

// AuthHandler bundles dependencies for registration, login and /me.
type AuthHandler struct {
    Users      *repository.UserRepo
    Tokens     *utils.TokenIssuer
    BcryptCost int

    // dummyHash is compared against when the email is unknown, so that a
    // failed login costs one bcrypt comparison whether or not the account
    // exists.
    dummyHash string
}

// verifyPassword is swapped out in tests.
var verifyPassword = utils.VerifyPassword

func NewAuthHandler(u *repository.UserRepo, t *utils.TokenIssuer, bcryptCost int) *AuthHandler {
    h := &AuthHandler{Users: u, Tokens: t, BcryptCost: bcryptCost}
    if dh, err := utils.HashPassword(uuid.NewString(), bcryptCost); err == nil {
        h.dummyHash = dh
    }
    return h
}

// ----- DTOs -----

type registerReq struct {
    Username string `json:"username"`
    Email    string `json:"email"`
    Password string `json:"password"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type registerResp struct {
    ID       string `json:"id"`
    Username string `json:"username"`
}
type loginResp struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

// Register: POST /api/users.  Creates the account; the password is hashed
// before it reaches the store.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    req.Email = repository.NormalizeEmail(req.Email)
    if req.Username == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, errMissingFields)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.BcryptCost)
    if err != nil {
        return storeError(c, err, "register user", logrus.Fields{"username": req.Username},
            "not found", "email already exists")
    }
    return c.JSON(http.StatusCreated, registerResp{ID: u.ID, Username: u.Username})
}

// Login: POST /api/auth/login.  Unknown email and wrong password get the
// same 401 so that accounts cannot be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = repository.NormalizeEmail(req.Email)
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, errMissingFields)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            verifyPassword(h.dummyHash, req.Password)
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return storeError(c, err, "login lookup", nil, "", "")
    }
    if !verifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    tok, err := h.Tokens.Issue(u.ID)
    if err != nil {
        middleware.Logger(c).WithError(err).Error("issue token failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "auth error"})
    }
    return c.JSON(http.StatusOK, loginResp{Token: tok.Token, Expires: tok.Exp})
}

// Me: GET /api/me.  Echoes the authenticated subject and its username.
func (h *AuthHandler) Me(c echo.Context) error {
    uid := middleware.CurrentUserID(c)
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return storeError(c, err, "load current user", logrus.Fields{"user_id": uid}, "user not found", "")
    }
    return c.JSON(http.StatusOK, registerResp{ID: u.ID, Username: u.Username})
}
