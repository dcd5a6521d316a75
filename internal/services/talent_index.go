package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"alfredoptarigan/resume-screener/internal/models"
)

type TalentIndexService interface {
	InitCollection() error
	IndexCandidate(ctx context.Context, candidate *models.Candidate, vector []float64) error
	SearchSimilar(ctx context.Context, vector []float64, limit int, excludeID uuid.UUID) ([]models.SimilarCandidate, error)
	DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error
}

type talentIndexService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewTalentIndexService(urlStr, apiKey, collectionName string, vectorSize int) (TalentIndexService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC client, port 6334 by default.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &talentIndexService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     uint64(vectorSize),
	}, nil
}

// InitCollection implements TalentIndexService.
func (t *talentIndexService) InitCollection() error {
	ctx := context.Background()

	exists, err := t.client.CollectionExists(ctx, t.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = t.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: t.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     t.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// IndexCandidate implements TalentIndexService.
func (t *talentIndexService) IndexCandidate(ctx context.Context, candidate *models.Candidate, vector []float64) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(candidate.ID.String()),
		Vectors: qdrant.NewVectors(toFloat32(vector)...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"candidate_id": candidate.ID.String(),
			"name":         candidate.Name,
			"job_title":    candidate.JobTitle,
		}),
	}

	_, err := t.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: t.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// SearchSimilar implements TalentIndexService.
func (t *talentIndexService) SearchSimilar(ctx context.Context, vector []float64, limit int, excludeID uuid.UUID) ([]models.SimilarCandidate, error) {
	var filter *qdrant.Filter
	if excludeID != uuid.Nil {
		filter = &qdrant.Filter{
			MustNot: []*qdrant.Condition{
				qdrant.NewMatch("candidate_id", excludeID.String()),
			},
		}
	}

	searchResult, err := t.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: t.collectionName,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var results []models.SimilarCandidate
	for _, point := range searchResult {
		payload := point.Payload

		result := models.SimilarCandidate{Score: point.Score}
		if id, ok := payload["candidate_id"]; ok {
			if val, ok := id.GetKind().(*qdrant.Value_StringValue); ok {
				result.ID = val.StringValue
			}
		}
		if name, ok := payload["name"]; ok {
			if val, ok := name.GetKind().(*qdrant.Value_StringValue); ok {
				result.Name = val.StringValue
			}
		}
		if title, ok := payload["job_title"]; ok {
			if val, ok := title.GetKind().(*qdrant.Value_StringValue); ok {
				result.JobTitle = val.StringValue
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// DeleteCandidate implements TalentIndexService.
func (t *talentIndexService) DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("candidate_id", candidateID.String()),
		},
	}

	_, err := t.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: t.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
