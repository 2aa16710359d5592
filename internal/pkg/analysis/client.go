package analysis

import (
	"Prism/internal/api/config"
	"context"
	"encoding/base64"
	"fmt"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Label 视觉识别返回的标签
type Label struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// VideoAnalysis 视频分析结果，缩略图由服务端抽帧生成
type VideoAnalysis struct {
	Thumbnail  []byte
	MimeType   string
	Filename   string
	Emotion    string
	Confidence float64
}

// Client 媒体分析服务客户端
type Client struct {
	httpClient *resty.Client
}

func NewClient() *Client {
	cfg := config.Cfg.Analysis

	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+cfg.ApiKey)

	return &Client{httpClient: client}
}

// AnalyzeImage 识别图片内容，返回带置信度的标签列表
func (s *Client) AnalyzeImage(ctx context.Context, url string) ([]Label, error) {
	var result struct {
		Labels []Label `json:"labels"`
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"url": url}).
		SetResult(&result).
		Post("/v1/image/labels")
	if err != nil {
		log.ErrorContext(ctx, "AnalyzeImage", "error", err)
		return nil, err
	}
	if resp.IsError() {
		log.ErrorContext(ctx, "AnalyzeImage", "status", resp.StatusCode(), "body", resp.String())
		return nil, fmt.Errorf("图片分析服务返回异常状态: %d", resp.StatusCode())
	}

	return result.Labels, nil
}

// AnalyzeVideoAndThumbnail 分析视频情感并抽取封面帧
func (s *Client) AnalyzeVideoAndThumbnail(ctx context.Context, url string) (*VideoAnalysis, error) {
	var result struct {
		Thumbnail  string  `json:"thumbnail"`
		MimeType   string  `json:"mime_type"`
		Filename   string  `json:"filename"`
		Emotion    string  `json:"emotion"`
		Confidence float64 `json:"confidence"`
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"url": url}).
		SetResult(&result).
		Post("/v1/video/analyze")
	if err != nil {
		log.ErrorContext(ctx, "AnalyzeVideoAndThumbnail", "error", err)
		return nil, err
	}
	if resp.IsError() {
		log.ErrorContext(ctx, "AnalyzeVideoAndThumbnail", "status", resp.StatusCode(), "body", resp.String())
		return nil, fmt.Errorf("视频分析服务返回异常状态: %d", resp.StatusCode())
	}

	if result.Thumbnail == "" {
		return nil, errors.New("视频分析结果缺少缩略图数据")
	}

	raw, err := base64.StdEncoding.DecodeString(result.Thumbnail)
	if err != nil {
		log.ErrorContext(ctx, "AnalyzeVideoAndThumbnail decode thumbnail", "error", err)
		return nil, err
	}

	return &VideoAnalysis{
		Thumbnail:  raw,
		MimeType:   result.MimeType,
		Filename:   result.Filename,
		Emotion:    result.Emotion,
		Confidence: result.Confidence,
	}, nil
}
