package job

import (
	"Prism/internal/model"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubTranslator struct {
	calls   int
	failFor string
}

func (s *stubTranslator) Translate(_ context.Context, text string, _ string, _ string) (string, error) {
	s.calls++
	if text == s.failFor {
		return "", errors.New("模型超时")
	}
	return "译文:" + text, nil
}

func captionPtr(s string) *string { return &s }

func TestTranslationBackfillShortCircuitsWhenDisabled(t *testing.T) {
	translator := &stubTranslator{}
	mediaRepo := &stubMediaRepo{missingTranslation: []*model.MediaObject{
		{ID: 1, Metadata: &model.MediaObjectMetadata{Caption: captionPtr("a cat")}},
	}}

	j := &TranslationBackfillJob{
		mediaRepo:    mediaRepo,
		metadataRepo: newStubMetadataRepo(),
		translator:   translator,
		batchSize:    50,
		enabled:      false,
	}
	j.Run()

	// 关闭开关后任务立即退出，不触碰任何协作方
	assert.Zero(t, translator.calls)
}

func TestTranslationBackfillIsolatesItemFailures(t *testing.T) {
	translator := &stubTranslator{failFor: "broken"}
	metadataRepo := newStubMetadataRepo()
	mediaRepo := &stubMediaRepo{missingTranslation: []*model.MediaObject{
		{ID: 1, Metadata: &model.MediaObjectMetadata{Caption: captionPtr("a cat")}},
		{ID: 2, Metadata: &model.MediaObjectMetadata{Caption: captionPtr("broken")}},
		{ID: 3, Metadata: &model.MediaObjectMetadata{Caption: captionPtr("a dog")}},
		{ID: 4, Metadata: nil},
	}}

	j := &TranslationBackfillJob{
		mediaRepo:    mediaRepo,
		metadataRepo: metadataRepo,
		translator:   translator,
		batchSize:    50,
		enabled:      true,
		source:       "English",
		target:       "Chinese",
	}
	j.Run()

	assert.Equal(t, "译文:a cat", metadataRepo.translations[1])
	assert.NotContains(t, metadataRepo.translations, uint64(2))
	assert.Equal(t, "译文:a dog", metadataRepo.translations[3])
	assert.NotContains(t, metadataRepo.translations, uint64(4))
}
