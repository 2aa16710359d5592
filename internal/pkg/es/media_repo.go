package es

import (
	"Prism/internal/pkg/consts"
	"Prism/internal/pkg/util"
	"context"
	"errors"
	log "log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/goccy/go-json"
)

type MediaRepo interface {
	IndexMedia(ctx context.Context, doc *MediaES) error
	DeleteMedia(ctx context.Context, id uint64) error
	SearchByKeyword(ctx context.Context, keyword string, from, size int) ([]*MediaES, error)
}

type MediaRepoImpl struct {
	client *elasticsearch.TypedClient
}

func NewMediaRepo(client *elasticsearch.TypedClient) MediaRepo {
	return &MediaRepoImpl{client: client}
}

// IndexMedia 覆写文档，管道每次富化后整体重建
func (s *MediaRepoImpl) IndexMedia(ctx context.Context, doc *MediaES) error {
	docID := strconv.FormatUint(doc.ID, 10)

	_, err := s.client.Index(MediaIndex).
		Id(docID).
		Document(doc).
		Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == ConflictCode {
				log.Warn("Version conflict detected, skipping old data", "media_id", doc.ID)
				return nil
			}
		}
		return err
	}

	return nil
}

func (s *MediaRepoImpl) DeleteMedia(ctx context.Context, id uint64) error {
	docID := strconv.FormatUint(id, 10)
	_, err := s.client.Delete(MediaIndex, docID).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == NotFoundCode {
				log.Warn("Media already deleted or not found in ES", "id", id)
				return nil
			}
		}
		return err
	}
	return nil
}

// SearchByKeyword 在描述、译文、标签与原始文件名上做全文检索，只返回在线对象
func (s *MediaRepoImpl) SearchByKeyword(ctx context.Context, keyword string, from, size int) ([]*MediaES, error) {
	boolQuery := &types.BoolQuery{
		Filter: []types.Query{
			{Term: map[string]types.TermQuery{"status": {Value: consts.StatusActive}}},
		},
		Must: []types.Query{
			{
				MultiMatch: &types.MultiMatchQuery{
					Query:     keyword,
					Fields:    []string{"caption^2", "translated_caption^2", "tags^3", "original_name"},
					Fuzziness: util.PtrStr("AUTO"),
				},
			},
		},
	}

	req := s.client.Search().Index(MediaIndex).
		Query(&types.Query{Bool: boolQuery}).
		From(from).
		Size(size)

	return s.executeSearch(ctx, req)
}

func (s *MediaRepoImpl) executeSearch(ctx context.Context, req *search.Search) ([]*MediaES, error) {
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*MediaES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var doc MediaES
		if err = json.Unmarshal(hit.Source_, &doc); err != nil {
			continue
		}
		results = append(results, &doc)
	}
	return results, nil
}
