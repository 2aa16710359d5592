package llm

import (
	"Prism/internal/api/config"
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/liuzl/gocc"
	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
)

const captionPrompt = "你是一个图片描述助手。请用一句话客观描述图片的主要内容，不要添加任何评价或推测，直接输出描述文本。"

const translatePromptTemplate = "你是一个专业翻译。请将用户给出的文本从 %s 翻译为 %s，只输出译文本身，不要任何解释。"

// Caption 为图片生成一句话描述
func Caption(ctx context.Context, picUrl string) (string, error) {
	if err := ImageSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer ImageSem.Release(1)

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(captionPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.ImageURLPart(picUrl),
			},
		},
	}

	log.InfoContext(ctx, "正在请求AI大模型生成图片描述")
	resp, err := llmClient.GenerateContent(ctx, messages,
		llms.WithModel(config.Cfg.LLM.VisionModel),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		return "", err
	}

	return extractText(resp)
}

// Translate 翻译文本并做简繁归一化
func Translate(ctx context.Context, text string, source string, target string) (string, error) {
	if err := TextSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer TextSem.Release(1)

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(fmt.Sprintf(translatePromptTemplate, source, target)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	log.InfoContext(ctx, "正在请求AI大模型翻译文本")
	resp, err := llmClient.GenerateContent(ctx, messages,
		llms.WithModel(config.Cfg.LLM.TextModel),
		llms.WithTemperature(0.1),
	)
	if err != nil {
		return "", err
	}

	out, err := extractText(resp)
	if err != nil {
		return "", err
	}

	return normalizeSimplified(out), nil
}

func extractText(resp *llms.ContentResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("AI大模型返回内容为空")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// normalizeSimplified 繁体转简体，转换失败时原样返回
func normalizeSimplified(res string) string {
	t2s, err := gocc.New("t2s")
	if err != nil {
		return res
	}
	out, err := t2s.Convert(res)
	if err != nil {
		return res
	}
	return out
}
