package handler

import (
	"Prism/internal/api/dto"
	"Prism/internal/pkg/mongo"
	"Prism/internal/pkg/response"
	"Prism/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultJobRunLimit = 20

type AdminHandler struct {
	migrationService service.MigrationService
	auditRepo        mongo.JobAuditRepo
}

func NewAdminHandler(migrationService service.MigrationService, auditRepo mongo.JobAuditRepo) *AdminHandler {
	return &AdminHandler{
		migrationService: migrationService,
		auditRepo:        auditRepo,
	}
}

// Migrate 扫描指定桶，把目录中不存在的对象补登为上传行
func (s *AdminHandler) Migrate(c *gin.Context) {
	var req dto.MigrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := s.migrationService.Migrate(c.Request.Context(), req.Bucket, req.Prefix, req.AppName, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// JobRuns 返回指定任务最近的运行审计记录
func (s *AdminHandler) JobRuns(c *gin.Context) {
	jobName := c.Param("name")
	if jobName == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	limit := defaultJobRunLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		limit = parsed
	}

	runs, err := s.auditRepo.GetRecentRuns(c.Request.Context(), jobName, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, runs)
}
