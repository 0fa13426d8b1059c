package mockapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"libportal/internal/domain"
	"libportal/internal/middleware"
	"libportal/internal/pkg/apperr"
	"libportal/internal/pkg/jwt"
	"libportal/internal/pkg/response"
	"libportal/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store  *Store
	tokens *jwt.Service
}

func NewHandler(store *Store, tokens *jwt.Service) *Handler {
	return &Handler{store: store, tokens: tokens}
}

// NewRouter mounts every endpoint under /api/v1, the path prefix the portal
// client expects.
func NewRouter(store *Store, tokens *jwt.Service, logger *slog.Logger, corsOrigins string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorLogger(logger))
	r.Use(middleware.CORS(corsOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(tokens))
	admin := v1.Group("/admin")
	admin.Use(middleware.JWTAuth(tokens), middleware.AdminOnly())

	NewHandler(store, tokens).RegisterRoutes(v1, protected, admin)
	return r
}

func (h *Handler) RegisterRoutes(public, protected, admin *gin.RouterGroup) {
	if public != nil {
		public.POST("/auth/login", h.Login)
		public.POST("/auth/register", h.Register)
		public.POST("/auth/forgot", h.Forgot)
		public.POST("/auth/forgot/verify", h.VerifyCode)
		public.POST("/auth/forgot/reset", h.ResetPassword)

		public.GET("/catalogo/sedes", h.Sites)
		public.GET("/catalogo/libros", h.Books)
		public.GET("/catalogo/recursos", h.Resources)
		public.GET("/reservas/disponibilidad", h.Availability)
	}

	if protected != nil {
		protected.POST("/reservas/", h.CreateReservation)
	}

	if admin != nil {
		admin.POST("/validar-qr", h.ValidateQR)
	}
}

/* ---------- AUTH ---------- */

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	role, err := h.store.Authenticate(form.Username, form.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(form.Username, string(role))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "Datos de registro inválidos")
		return
	}

	if err := h.store.Register(req.DNI, req.Email, req.Password); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dni": req.DNI, "email": req.Email, "rol": domain.RoleUser})
}

func (h *Handler) Forgot(c *gin.Context) {
	var req recoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "dni and email are required")
		return
	}
	h.store.StartRecovery(req.DNI, req.Email)
	response.Success(c, http.StatusOK, gin.H{"msg": "Código enviado"})
}

func (h *Handler) VerifyCode(c *gin.Context) {
	var req recoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "dni and email are required")
		return
	}
	if err := h.store.VerifyRecovery(req.DNI, req.Email, req.Code); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"msg": "Código correcto"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req recoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.NewPassword == "" {
		response.Error(c, http.StatusUnprocessableEntity, "dni, email and new_password are required")
		return
	}
	if err := h.store.ResetPassword(req.DNI, req.Email, req.Code, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"msg": "Contraseña actualizada correctamente"})
}

/* ---------- CATALOG ---------- */

func (h *Handler) Sites(c *gin.Context) {
	response.Success(c, http.StatusOK, h.store.Sites())
}

func (h *Handler) Books(c *gin.Context) {
	siteID, _ := strconv.ParseInt(c.Query("sede_id"), 10, 64)
	response.Success(c, http.StatusOK, h.store.Books(c.Query("q"), siteID, c.Query("categoria")))
}

func (h *Handler) Resources(c *gin.Context) {
	siteID, _ := strconv.ParseInt(c.Query("sede_id"), 10, 64)
	response.Success(c, http.StatusOK, h.store.Resources(domain.ResourceKind(c.Query("tipo")), siteID))
}

// Availability answers both calendar queries: tipo=SALA with fecha and
// recurso_id, or tipo=LIBRO with mes and libro_id.
func (h *Handler) Availability(c *gin.Context) {
	tipo := c.DefaultQuery("tipo", string(domain.TargetRoom))

	switch {
	case tipo == string(domain.TargetRoom) && c.Query("fecha") != "":
		date, err := domain.ParseDate(c.Query("fecha"))
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Fecha inválida")
			return
		}
		id, _ := strconv.ParseInt(c.Query("recurso_id"), 10, 64)
		response.Success(c, http.StatusOK, gin.H{"ocupados": h.store.OccupiedSlots(id, date)})

	case tipo == string(domain.TargetBook) && c.Query("mes") != "":
		month, err := domain.ParseYearMonth(c.Query("mes"))
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Formato mes inválido")
			return
		}
		id, _ := strconv.ParseInt(c.Query("libro_id"), 10, 64)
		dates, err := h.store.UnavailableDates(id, month)
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"fechas_sin_stock": dates})

	default:
		response.Success(c, http.StatusOK, gin.H{"msg": "Parámetros incorrectos"})
	}
}

/* ---------- RESERVATIONS ---------- */

func (h *Handler) CreateReservation(c *gin.Context) {
	var req domain.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.Error(c, http.StatusUnprocessableEntity, validator.Summary(fields))
		return
	}

	conf, err := h.store.CreateReservation(c.GetString(middleware.CtxDNI), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, conf)
}

func (h *Handler) ValidateQR(c *gin.Context) {
	token := c.Query("qr_token")
	if token == "" {
		response.Error(c, http.StatusUnprocessableEntity, "qr_token is required")
		return
	}

	out, err := h.store.ValidateEntry(token)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func writeError(c *gin.Context, err error) {
	var e *apperr.Error
	if errors.As(err, &e) && e.Status != 0 {
		response.Error(c, e.Status, e.Message)
		return
	}
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "Internal Server Error")
}
