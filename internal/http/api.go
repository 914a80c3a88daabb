package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"songbox/internal/auth"
	"songbox/internal/domain"
	"songbox/internal/repository"
	"songbox/internal/service"
	"songbox/internal/storage"
)

const streamURLTTL = 15 * time.Minute

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	songs        service.SongService
	tokens       *auth.TokenManager
	sessions     *auth.Middleware
	store        storage.Store
	cookieSecure bool
}

func NewHandler(users service.UserService, songs service.SongService, tokens *auth.TokenManager, sessions *auth.Middleware, store storage.Store, cookieSecure bool) *Handler {
	return &Handler{
		users:        users,
		songs:        songs,
		tokens:       tokens,
		sessions:     sessions,
		store:        store,
		cookieSecure: cookieSecure,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.POST("/logout", h.logout)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		protected := api.Group("")
		protected.Use(h.sessions.Handle)
		{
			protected.GET("/me", h.me)
			protected.PUT("/me", h.updateProfile)
			protected.GET("/songs", h.listSongs)
			protected.POST("/songs", h.addSong)
			protected.GET("/songs/:id", h.getSong)
			protected.PUT("/songs/:id", h.updateSong)
			protected.DELETE("/songs/:id", h.deleteSong)
			protected.GET("/songs/:id/media", h.songMedia)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "field": "username"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "field": "email"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user))
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidCredentials.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	token, expiresAt, err := h.tokens.Issue(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.setAuthCookie(c, token, int(h.tokens.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"user":       userToResponse(user),
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// logout only clears the client cookie; tokens stay valid until they expire.
func (h *Handler) logout(c *gin.Context) {
	h.setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

func (h *Handler) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AccessTokenCookie, token, maxAge, "/", "", h.cookieSecure, true)
}

func (h *Handler) me(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

type updateProfileRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.Username, req.Email, req.FullName)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "field": "email"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, userToResponse(updated))
}

func (h *Handler) listSongs(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	songs, err := h.songs.List(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]SongResponse, len(songs))
	for i := range songs {
		resp[i] = songToResponse(songs[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) addSong(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	name := c.PostForm("name")
	artist := c.PostForm("artist")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	song, err := h.songs.Add(
		c.Request.Context(),
		user.ID,
		name,
		artist,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, songToResponse(*song))
}

func (h *Handler) getSong(c *gin.Context) {
	user, id, ok := h.songRequest(c)
	if !ok {
		return
	}

	song, err := h.songs.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		h.songError(c, err)
		return
	}

	c.JSON(http.StatusOK, songToResponse(*song))
}

type updateSongRequest struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

func (h *Handler) updateSong(c *gin.Context) {
	user, id, ok := h.songRequest(c)
	if !ok {
		return
	}

	var req updateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	song, err := h.songs.UpdateInfo(c.Request.Context(), user.ID, id, req.Name, req.Artist)
	if err != nil {
		h.songError(c, err)
		return
	}

	c.JSON(http.StatusOK, songToResponse(*song))
}

func (h *Handler) deleteSong(c *gin.Context) {
	user, id, ok := h.songRequest(c)
	if !ok {
		return
	}

	if err := h.songs.Remove(c.Request.Context(), user.ID, id); err != nil {
		h.songError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// songMedia hands out the media bytes: a redirect to a presigned URL when the
// backend supports it, a direct stream otherwise.
func (h *Handler) songMedia(c *gin.Context) {
	user, id, ok := h.songRequest(c)
	if !ok {
		return
	}

	url, err := h.songs.StreamURL(c.Request.Context(), user.ID, id, streamURLTTL)
	if err == nil {
		c.Redirect(http.StatusTemporaryRedirect, url)
		return
	}
	if !errors.Is(err, storage.ErrURLNotSupported) {
		h.songError(c, err)
		return
	}

	song, err := h.songs.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		h.songError(c, err)
		return
	}

	body, err := h.store.Open(c.Request.Context(), song.StorageKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	contentType := song.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, song.Size, contentType, body, map[string]string{
		"Content-Disposition": `inline; filename="` + song.Name + `"`,
	})
}

func (h *Handler) songRequest(c *gin.Context) (*domain.User, int64, bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return nil, 0, false
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid song id"})
		return nil, 0, false
	}
	return user, id, true
}

func (h *Handler) songError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSongNotFound), errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrSongNotFound.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Disabled  bool   `json:"disabled"`
	CreatedAt string `json:"created_at"`
}

type SongResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Disabled:  user.Disabled,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func songToResponse(song domain.Song) SongResponse {
	return SongResponse{
		ID:          song.ID,
		Name:        song.Name,
		Artist:      song.Artist,
		Size:        song.Size,
		ContentType: song.ContentType,
		CreatedAt:   song.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   song.UpdatedAt.Format(time.RFC3339),
	}
}
