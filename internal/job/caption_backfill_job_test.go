package job

import (
	"Prism/internal/model"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubCaptioner struct {
	calls int
	err   error
}

func (s *stubCaptioner) Caption(context.Context, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "一只在草地上打盹的猫", nil
}

func urlPtr(s string) *string { return &s }

func TestCaptionBackfillDisabled(t *testing.T) {
	captioner := &stubCaptioner{}
	j := &CaptionBackfillJob{
		mediaRepo: &stubMediaRepo{missingCaption: []*model.MediaObject{
			{ID: 1, PublicURL: urlPtr("https://media.test/a.jpg")},
		}},
		metadataRepo: newStubMetadataRepo(),
		captioner:    captioner,
		batchSize:    50,
		enabled:      false,
	}
	j.Run()
	assert.Zero(t, captioner.calls)
}

func TestCaptionBackfillPopulatesCaptions(t *testing.T) {
	captioner := &stubCaptioner{}
	metadataRepo := newStubMetadataRepo()
	j := &CaptionBackfillJob{
		mediaRepo: &stubMediaRepo{missingCaption: []*model.MediaObject{
			{ID: 1, PublicURL: urlPtr("https://media.test/a.jpg")},
			{ID: 2, PublicURL: nil},
		}},
		metadataRepo: metadataRepo,
		captioner:    captioner,
		batchSize:    50,
		enabled:      true,
	}
	j.Run()

	assert.Equal(t, 1, captioner.calls)
	assert.Contains(t, metadataRepo.captions, uint64(1))
	assert.NotContains(t, metadataRepo.captions, uint64(2))
}

func TestCaptionBackfillSwallowsCollaboratorFailure(t *testing.T) {
	captioner := &stubCaptioner{err: errors.New("视觉模型不可用")}
	metadataRepo := newStubMetadataRepo()
	j := &CaptionBackfillJob{
		mediaRepo: &stubMediaRepo{missingCaption: []*model.MediaObject{
			{ID: 1, PublicURL: urlPtr("https://media.test/a.jpg")},
		}},
		metadataRepo: metadataRepo,
		captioner:    captioner,
		batchSize:    50,
		enabled:      true,
	}
	j.Run()
	assert.Empty(t, metadataRepo.captions)
}
