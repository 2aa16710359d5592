package handler

import (
	"Prism/internal/api/dto"
	"Prism/internal/pkg/consts"
	"Prism/internal/pkg/es"
	"Prism/internal/pkg/response"
	"Prism/internal/pkg/transcode"
	"Prism/internal/pkg/util"
	"Prism/internal/service"
	log "log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

const defaultSearchSize = 20

type MediaHandler struct {
	mediaService service.MediaService
	transcoder   *transcode.Transcoder
	mediaESRepo  es.MediaRepo
}

func NewMediaHandler(mediaService service.MediaService, transcoder *transcode.Transcoder, mediaESRepo es.MediaRepo) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		transcoder:   transcoder,
		mediaESRepo:  mediaESRepo,
	}
}

// Upload 接收表单文件，嗅探真实类型后走统一上传入口
func (s *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	appName := c.PostForm("app_name")
	if appName == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID, err := strconv.ParseUint(c.PostForm("user_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	contentType, err := util.GetSafeContentType(reader)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "sniff content type failed", "err", err)
		response.Error(c, service.ErrStream)
		return
	}

	isImage := strings.HasPrefix(contentType, consts.MimePrefixImage)
	isVideo := strings.HasPrefix(contentType, consts.MimePrefixVideo)
	isAudio := strings.HasPrefix(contentType, consts.MimePrefixAudio)
	if !isImage && !isVideo && !isAudio {
		response.Error(c, service.ErrFileNotSupported)
		return
	}

	obj, err := s.mediaService.Upload(c.Request.Context(), reader, file.Size, file.Filename, contentType,
		appName, userID, service.UploadOptions{})
	if err != nil {
		response.Error(c, err)
		return
	}

	var resp dto.MediaUploadResponse
	_ = copier.Copy(&resp, obj)
	response.Success(c, resp)
}

// Get 按 ID 查询目录行，带元数据与标签
func (s *MediaHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	obj, err := s.mediaService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, obj)
}

// Deactivate 软下线，对象存储中的字节保持原样
func (s *MediaHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.mediaService.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// Search 基于 ES 的关键词检索
func (s *MediaHandler) Search(c *gin.Context) {
	var query dto.MediaSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}
	if query.Size == 0 {
		query.Size = defaultSearchSize
	}

	results, err := s.mediaESRepo.SearchByKeyword(c.Request.Context(), query.Keyword, query.From, query.Size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, results)
}

// TranscodeLowRes 同步生成低清渲染版并返回产物
func (s *MediaHandler) TranscodeLowRes(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	obj, err := s.mediaService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	rendition, err := s.transcoder.GenerateLowRes(c.Request.Context(), obj)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, rendition)
}
