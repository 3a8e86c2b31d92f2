package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/esnrhm/LinuxNetAPI/internal/application/usecases"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// QueryService answers read-only interface and backend questions
type QueryService interface {
	ListPublic(ctx context.Context) ([]entities.NetworkInterface, error)
	ListAll(ctx context.Context) ([]entities.NetworkInterface, error)
	Get(ctx context.Context, name string) (*entities.NetworkInterface, error)
	BackendKind(ctx context.Context) (*usecases.BackendInfo, error)
	Redetect(ctx context.Context) (*usecases.BackendInfo, error)
	ContainerStatus(ctx context.Context) *usecases.ContainerStatus
}

// ConfigureService configures one interface
type ConfigureService interface {
	Execute(ctx context.Context, input usecases.ConfigureInterfaceInput) (*entities.ConfigureResult, error)
}

// ControlService restarts, enables and disables interfaces
type ControlService interface {
	Restart(ctx context.Context, name string) (*entities.ControlResult, error)
	Enable(ctx context.Context, name string) (*entities.ControlResult, error)
	Disable(ctx context.Context, name string) (*entities.ControlResult, error)
}

// CleanupService removes generated artifacts
type CleanupService interface {
	Execute(ctx context.Context, name string) (*entities.CleanupResult, error)
}

// ArtifactService lists and validates persisted artifacts
type ArtifactService interface {
	ListAll(ctx context.Context) (entities.BackendKind, []entities.GeneratedConfigArtifact, error)
	ListGenerated(ctx context.Context) ([]entities.GeneratedConfigArtifact, error)
	Validate(ctx context.Context, name string) (*entities.ValidationReport, error)
	ValidateAll(ctx context.Context) ([]entities.ValidationReport, error)
}

// StatusService reports host-wide network state
type StatusService interface {
	Status(ctx context.Context) (*usecases.NetworkStatus, error)
	DNS(ctx context.Context) ([]string, error)
	Routes(ctx context.Context) ([]entities.Route, error)
	SystemInfo(ctx context.Context) (*usecases.SystemInfo, error)
	ApplyConfig(ctx context.Context) (*entities.ApplyResult, error)
}

// HostnameService reads and changes the hostname
type HostnameService interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, name string) (*entities.HostnameResult, error)
}

// HistoryService reads the operation audit trail
type HistoryService interface {
	List(ctx context.Context, name string, limit int) ([]entities.HistoryRecord, error)
}

// Services groups the use cases served over HTTP
type Services struct {
	Query     QueryService
	Configure ConfigureService
	Control   ControlService
	Cleanup   CleanupService
	Artifacts ArtifactService
	Status    StatusService
	Hostname  HostnameService
	History   HistoryService
}

// Handler serves the REST API
type Handler struct {
	services Services
	version  string
	logger   *logrus.Logger
}

// NewHandler creates a new Handler
func NewHandler(services Services, version string, logger *logrus.Logger) *Handler {
	return &Handler{services: services, version: version, logger: logger}
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "linuxnetd",
		"version": h.version,
		"message": "Linux network configuration API",
	})
}

func (h *Handler) backendKind(c *gin.Context) {
	info, err := h.services.Query.BackendKind(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) redetect(c *gin.Context) {
	info, err := h.services.Query.Redetect(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) containerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Query.ContainerStatus(c.Request.Context()))
}

func (h *Handler) listPublic(c *gin.Context) {
	list, err := h.services.Query.ListPublic(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) listAll(c *gin.Context) {
	list, err := h.services.Query.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := AllInterfacesResponse{
		Public:  []entities.NetworkInterface{},
		Virtual: []entities.NetworkInterface{},
	}
	for _, ni := range list {
		if ni.IsPublic() {
			resp.Public = append(resp.Public, ni)
		} else {
			resp.Virtual = append(resp.Virtual, ni)
		}
	}
	resp.Summary = InterfaceSummary{Total: len(list), Public: len(resp.Public), Virtual: len(resp.Virtual)}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getInterface(c *gin.Context) {
	ni, err := h.services.Query.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ni)
}

func (h *Handler) configure(c *gin.Context) {
	name := c.Param("name")

	var req ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidationError("invalid request body", err))
		return
	}
	if err := requestValidate.Struct(req); err != nil {
		abortWithError(c, errors.NewValidationError("invalid interface configuration", err))
		return
	}

	result, err := h.services.Configure.Execute(c.Request.Context(), usecases.ConfigureInterfaceInput{
		Name:   name,
		Config: req.Config(),
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), ConfigureResponse{
			Message: fmt.Sprintf("configuration of %s failed", name),
			Result:  result,
			Error:   errorBody(err),
		})
		return
	}

	c.JSON(http.StatusOK, ConfigureResponse{
		Message: fmt.Sprintf("interface %s configured", name),
		Result:  result,
	})
}

func (h *Handler) control(action func(context.Context, string) (*entities.ControlResult, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := action(c.Request.Context(), c.Param("name"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (h *Handler) listArtifacts(c *gin.Context) {
	backend, artifacts, err := h.services.Artifacts.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ArtifactsResponse{Backend: backend, Count: len(artifacts), Artifacts: artifacts})
}

func (h *Handler) listGenerated(c *gin.Context) {
	artifacts, err := h.services.Artifacts.ListGenerated(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(artifacts), "artifacts": artifacts})
}

func (h *Handler) validateArtifact(c *gin.Context) {
	report, err := h.services.Artifacts.Validate(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) validateAll(c *gin.Context) {
	reports, err := h.services.Artifacts.ValidateAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := ValidateAllResponse{Valid: true, Reports: reports}
	for _, r := range reports {
		if !r.Valid {
			resp.Valid = false
			break
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) cleanup(c *gin.Context) {
	result, err := h.services.Cleanup.Execute(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) applyConfig(c *gin.Context) {
	result, err := h.services.Status.ApplyConfig(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) networkStatus(c *gin.Context) {
	status, err := h.services.Status.Status(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) dns(c *gin.Context) {
	servers, err := h.services.Status.DNS(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dns_servers": servers, "count": len(servers)})
}

func (h *Handler) routes(c *gin.Context) {
	routes, err := h.services.Status.Routes(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "count": len(routes)})
}

func (h *Handler) systemInfo(c *gin.Context) {
	info, err := h.services.Status.SystemInfo(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) getHostname(c *gin.Context) {
	name, err := h.services.Hostname.Get(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hostname": name})
}

func (h *Handler) setHostname(c *gin.Context) {
	var req HostnameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidationError("invalid request body", err))
		return
	}
	if err := requestValidate.Struct(req); err != nil {
		abortWithError(c, errors.NewValidationError("invalid hostname request", err))
		return
	}

	result, err := h.services.Hostname.Set(c.Request.Context(), req.Hostname)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) history(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abortWithError(c, errors.NewValidationError(fmt.Sprintf("invalid limit %q", raw), err))
			return
		}
		limit = n
	}

	records, err := h.services.History.List(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if records == nil {
		records = []entities.HistoryRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"interface": c.Param("name"), "records": records})
}
